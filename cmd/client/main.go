package main

import (
	"bufio"
	"flag"
	"os"
	"time"

	"github.com/hnakamur/remotesum/client"
	"golang.org/x/net/context"
)

var addr = flag.String("addr", "127.0.0.1:5000", "coordinator address")
var size = flag.Int("size", 5, "number of integers in each array")
var timeout = flag.Duration("timeout", 20*time.Second, "timeout of the request")

func readArray(r *bufio.Reader, name string) []int64 {
	printS(defaultStyle, "Enter %d integers for %s, separated by spaces:", *size, name)
	values, err := client.ReadArray(r, *size)
	if err != nil {
		printS(errorStyle, "[client] %s: %v", name, err)
		os.Exit(1)
	}
	return values
}

func main() {
	flag.Parse()

	stdin := bufio.NewReader(os.Stdin)
	a := readArray(stdin, "the first array (A)")
	b := readArray(stdin, "the second array (B)")
	printS(defaultStyle, "[client] A=%v", a)
	printS(defaultStyle, "[client] B=%v", b)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	reply, err := client.New(*addr, nil).SumArrays(ctx, a, b)
	if err != nil {
		printS(errorStyle, "[client] Error: %v", err)
		os.Exit(1)
	}
	if !reply.OK {
		printS(errorStyle, "[client] Error: %s", reply.Error)
		return
	}

	ok := client.Verify(a, b, reply.Result)
	style := successStyle
	if !ok {
		style = errorStyle
	}
	printS(style, "[client] OK=%t | elapsed=%.4fs", ok, reply.Elapsed)
	printS(style, "[client] Result=%v", reply.Result)
}
