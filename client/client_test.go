package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hnakamur/remotesum/msg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"
)

func TestClientSumArrays(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sum", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		var req msg.SumArraysRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		result := make([]int64, len(req.A))
		for i := range req.A {
			result[i] = req.A[i] + req.B[i]
		}
		json.NewEncoder(w).Encode(&msg.SumArraysReply{OK: true, Result: result, Elapsed: 0.5})
	}))
	defer ts.Close()

	c := New(strings.TrimPrefix(ts.URL, "http://"), nil)
	reply, err := c.SumArrays(context.Background(), []int64{1, 2, 3}, []int64{3, 2, 1})
	require.NoError(t, err)
	assert.True(t, reply.OK)
	assert.Equal(t, []int64{4, 4, 4}, reply.Result)
	assert.Equal(t, 0.5, reply.Elapsed)
}

func TestClientSumArraysBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
	}))
	defer ts.Close()

	c := New(strings.TrimPrefix(ts.URL, "http://"), nil)
	_, err := c.SumArrays(context.Background(), []int64{1}, []int64{1})
	assert.Error(t, err)
}
