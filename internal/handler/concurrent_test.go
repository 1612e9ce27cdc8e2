package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs-lzh/troupe/internal/model"
)

type TestResult struct {
	SuccessCount    int64
	AlreadyApplied  int64
	OtherErrorCount int64
	TotalRequests   int64
	TotalDuration   time.Duration
}

// castingFixture serves the router over a real listener with one organizer session.
type castingFixture struct {
	*testServer
	baseURL string
	token   string
	client  *http.Client
}

func newCastingFixture(t *testing.T, roleCount int) (*castingFixture, []uint) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	f := &castingFixture{
		testServer: s,
		baseURL:    srv.URL,
		token:      s.login("director", "stage"+bootstrapSuffix),
		client:     &http.Client{Timeout: 5 * time.Second},
	}

	rec := s.do(http.MethodPost, "/api/performances", f.token, gin.H{"title": "Hamlet"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	perf := decode[created](t, rec)

	roleIDs := make([]uint, 0, roleCount)
	for i := 1; i <= roleCount; i++ {
		rec := s.do(http.MethodPost, "/api/roles", f.token, gin.H{"performance_id": perf.ID, "role_name": fmt.Sprintf("role-%d", i)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		roleIDs = append(roleIDs, decode[created](t, rec).ID)
	}
	return f, roleIDs
}

func (f *castingFixture) sendApplyRequest(roleID uint, username string) (int, string, error) {
	jsonData, _ := json.Marshal(ApplyRequest{RoleID: roleID, Username: username})
	req, err := http.NewRequest(http.MethodPost, f.baseURL+"/api/apply", bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), nil
}

func (f *castingFixture) concurrentApply(t *testing.T, concurrency int, roleID uint, username func(int) string) *TestResult {
	result := &TestResult{}
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			name := username(index)
			statusCode, body, err := f.sendApplyRequest(roleID, name)
			atomic.AddInt64(&result.TotalRequests, 1)
			if err != nil {
				atomic.AddInt64(&result.OtherErrorCount, 1)
				t.Logf("request error [%s]: %v", name, err)
				return
			}

			switch statusCode {
			case http.StatusOK:
				atomic.AddInt64(&result.SuccessCount, 1)
			case http.StatusConflict:
				if strings.Contains(body, `"code":"conflict"`) {
					atomic.AddInt64(&result.AlreadyApplied, 1)
				} else {
					atomic.AddInt64(&result.OtherErrorCount, 1)
					t.Logf("unexpected 409 body [%s]: %s", name, body)
				}
			default:
				atomic.AddInt64(&result.OtherErrorCount, 1)
				t.Logf("unexpected status [%s]: %d, body: %s", name, statusCode, body)
			}
		}(i)
	}

	wg.Wait()
	result.TotalDuration = time.Since(start)
	return result
}

func (f *castingFixture) applicationCount(t *testing.T, roleID uint) int64 {
	var count int64
	require.NoError(t, f.db.Model(&model.Application{}).Where("role_id = ?", roleID).Count(&count).Error)
	return count
}

func TestConcurrent_DuplicateApplication(t *testing.T) {
	const concurrency = 20

	f, roleIDs := newCastingFixture(t, 1)
	result := f.concurrentApply(t, concurrency, roleIDs[0], func(int) string {
		return "alice"
	})
	t.Logf("duplicate applications: %+v", *result)

	assert.Equal(t, int64(1), result.SuccessCount)
	assert.Equal(t, int64(concurrency-1), result.AlreadyApplied)
	assert.Zero(t, result.OtherErrorCount)
	assert.Equal(t, int64(1), f.applicationCount(t, roleIDs[0]))
}

func TestConcurrent_DistinctApplicants(t *testing.T) {
	const concurrency = 30

	f, roleIDs := newCastingFixture(t, 1)
	result := f.concurrentApply(t, concurrency, roleIDs[0], func(i int) string {
		return fmt.Sprintf("actor-%d", i)
	})
	t.Logf("distinct applicants: %+v", *result)

	assert.Equal(t, int64(concurrency), result.SuccessCount)
	assert.Zero(t, result.OtherErrorCount)
	assert.Equal(t, int64(concurrency), f.applicationCount(t, roleIDs[0]))
}

func TestConcurrent_MultipleRoles(t *testing.T) {
	const (
		roleCount         = 3
		applicantsPerRole = 10
	)

	f, roleIDs := newCastingFixture(t, roleCount)

	var wg sync.WaitGroup
	results := make([]*TestResult, roleCount)
	for i, roleID := range roleIDs {
		wg.Add(1)
		go func(i int, roleID uint) {
			defer wg.Done()
			// every applicant submits twice
			results[i] = f.concurrentApply(t, applicantsPerRole*2, roleID, func(n int) string {
				return fmt.Sprintf("actor-%d", n%applicantsPerRole)
			})
		}(i, roleID)
	}
	wg.Wait()

	for i, roleID := range roleIDs {
		assert.Equal(t, int64(applicantsPerRole), results[i].SuccessCount)
		assert.Equal(t, int64(applicantsPerRole), results[i].AlreadyApplied)
		assert.Equal(t, int64(applicantsPerRole), f.applicationCount(t, roleID))
	}
}
