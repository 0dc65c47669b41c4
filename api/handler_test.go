package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hnakamur/ltsvlog"
	"github.com/hnakamur/remotesum/msg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) SumArrays(ctx context.Context, a, b []int64) *msg.SumArraysReply {
	args := m.Called(a, b)
	return args.Get(0).(*msg.SumArraysReply)
}

func (m *mockService) Workers() []msg.WorkerState {
	args := m.Called()
	return args.Get(0).([]msg.WorkerState)
}

func newTestRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(svc, ltsvlog.NewLTSVLogger(io.Discard, false))
}

func TestSumArrays(t *testing.T) {
	svc := new(mockService)
	reply := &msg.SumArraysReply{
		OK:      true,
		Result:  []int64{6, 6, 6, 6, 6},
		Elapsed: 0.01,
		Operators: []msg.OperatorInfo{
			{Name: "operator-1", Host: "127.0.0.1", Port: 6001, Alive: true},
		},
	}
	svc.On("SumArrays", []int64{1, 2, 3, 4, 5}, []int64{5, 4, 3, 2, 1}).Return(reply).Once()

	body := []byte(`{"a":[1,2,3,4,5],"b":[5,4,3,2,1]}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sum", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got msg.SumArraysReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, *reply, got)
	svc.AssertExpectations(t)
}

func TestSumArraysTaskFailureIsOK(t *testing.T) {
	svc := new(mockService)
	reply := &msg.SumArraysReply{
		Result:    []int64{},
		Error:     "length mismatch: len(a)=3 len(b)=2",
		Operators: []msg.OperatorInfo{},
	}
	svc.On("SumArrays", []int64{1, 2, 3}, []int64{1, 2}).Return(reply).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sum", bytes.NewReader([]byte(`{"a":[1,2,3],"b":[1,2]}`)))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got msg.SumArraysReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.False(t, got.OK)
	assert.Empty(t, got.Result)
	assert.Contains(t, got.Error, "length mismatch")
}

func TestSumArraysBadRequest(t *testing.T) {
	svc := new(mockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sum", bytes.NewReader([]byte(`{"a":[1,"x"]`)))
	req.Header.Set("Content-Type", "application/json")
	newTestRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "SumArrays", mock.Anything, mock.Anything)
}

func TestWorkers(t *testing.T) {
	svc := new(mockService)
	lastSuccess := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	states := []msg.WorkerState{
		{OperatorInfo: msg.OperatorInfo{Name: "operator-1", Host: "127.0.0.1", Port: 6001, Alive: true}, LastSuccess: lastSuccess},
		{OperatorInfo: msg.OperatorInfo{Name: "operator-2", Host: "127.0.0.1", Port: 6002}},
	}
	svc.On("Workers").Return(states).Once()

	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/workers", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []msg.WorkerState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "operator-1", got[0].Name)
	assert.True(t, got[0].Alive)
	assert.True(t, lastSuccess.Equal(got[0].LastSuccess))
	assert.False(t, got[1].Alive)
	assert.True(t, got[1].LastSuccess.IsZero())
}
