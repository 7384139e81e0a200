package schoolapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumanage/edumanage-core/internal/domain/shared"
	"github.com/edumanage/edumanage-core/pkg/circuitbreaker"
	"github.com/edumanage/edumanage-core/pkg/retry"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(DefaultConfig(srv.URL + "/"))
}

func TestClient_ListStudents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/students", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":7,"full_name":"Amine Tazi","group_id":3},{"id":8,"name":"Sara"}]`))
	})

	students, err := c.ListStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "7", students[0].ID)
	assert.Equal(t, "Amine Tazi", students[0].Name)
	assert.Equal(t, shared.GroupRef("3"), students[0].Group)
	assert.Equal(t, "Sara", students[1].Name)
}

func TestClient_ListTeachersEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":1,"full_name":"Mme Benali","speciality":"Français"}]}`))
	})

	teachers, err := c.ListTeachers(context.Background())
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, "Mme Benali", teachers[0].Name)
	assert.Equal(t, "Français", teachers[0].Speciality)
}

func TestClient_GetStudentNotFound(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Student not found"}`))
	})

	_, ok, err := c.GetStudent(context.Background(), "404")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(1), calls.Load(), "4xx is not retried")
}

func TestClient_GetStudent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/students/42", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":42,"full_name":"Yasmine Alaoui","email":"y@example.ma"}`))
	})
	c.config.Token = "secret"

	st, ok, err := c.GetStudent(context.Background(), "42")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Yasmine Alaoui", st.Name)
	assert.Equal(t, "y@example.ma", st.Email)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	students, err := c.ListStudents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.NotNil(t, students)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_FailureYieldsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	students, err := c.ListStudents(context.Background())
	assert.Error(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)

	teachers, err := c.ListTeachers(context.Background())
	assert.Error(t, err)
	assert.Empty(t, teachers)
}

func TestDecodeList_Malformed(t *testing.T) {
	_, err := decodeList[StudentDTO]([]byte(`{"data":`))
	assert.Error(t, err)

	out, err := decodeList[StudentDTO]([]byte(` `))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestClient_BreakerIgnoresClientErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 5; i++ {
		_, ok, err := c.GetStudent(context.Background(), "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, circuitbreaker.StateClosed, c.Circuit().State)
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	c.policy = retry.Policy{Attempts: 1}

	for i := 0; i < 3; i++ {
		_, err := c.ListStudents(context.Background())
		require.Error(t, err)
	}
	require.Equal(t, circuitbreaker.StateOpen, c.Circuit().State)

	students, err := c.ListStudents(context.Background())
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.True(t, shared.IsExternalService(err))
	assert.Empty(t, students)
	assert.Equal(t, int32(3), calls.Load(), "open circuit short-circuits the request")
	assert.Equal(t, 1, c.Circuit().Rejected)
}
