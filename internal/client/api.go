// 백엔드 피드백 API와 HTTP 통신하는 클라이언트 정의
//
// 환경변수:
//   - API_URL: 백엔드 API base URL
//
// 요청은 모두 Bearer 토큰 인증을 사용한다.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/greetings-portal/web/internal/config"
	"github.com/greetings-portal/web/internal/model"
)

const (
	loginPath         = "api/login"
	createMessagePath = "api/messages"
)

// loginRedirectDelay - 401 응답 후 로그인 화면으로 유도하기 전 대기 시간
// (진행 중인 UI 갱신과의 경합을 피하기 위해 즉시 이동하지 않는다)
const loginRedirectDelay = 1 * time.Second

type API struct {
	baseURL       string
	httpClient    *http.Client
	redirectDelay time.Duration
}

func NewAPI(cfg config.APIConfig) *API {
	return &API{
		baseURL: cfg.BaseURL,
		// No timeout and no retries: an accepted limitation of the
		// source system, carried over as-is.
		httpClient:    &http.Client{},
		redirectDelay: loginRedirectDelay,
	}
}

// Do issues one authenticated request to {baseURL}/{path}.
//
// A 200 response is handed back to the caller unread. A 401 arms a single
// delayed call of onUnauthorized (session expiry → navigate to login) in
// addition to the normal failure return. Every other non-200 status and
// any transport failure is logged and returned as an error.
func (a *API) Do(path, method string, body any, token string, onUnauthorized func()) (*http.Response, error) {
	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		buf = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequest(method, a.baseURL+"/"+path, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		log.Printf("api request failed: %s %s: %v", method, path, err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && onUnauthorized != nil {
		time.AfterFunc(a.redirectDelay, onUnauthorized)
	}

	log.Printf("api returned status %d: %s %s", resp.StatusCode, method, path)
	return nil, fmt.Errorf("api returned status: %d", resp.StatusCode)
}

// Login acknowledges the session server-side. The response body is not
// consumed by this client.
func (a *API) Login(token string, onUnauthorized func()) error {
	resp, err := a.Do(loginPath, http.MethodPost, nil, token, onUnauthorized)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// CreateMessage submits one feedback message.
func (a *API) CreateMessage(token string, msg model.CreateMessageRequest, onUnauthorized func()) error {
	resp, err := a.Do(createMessagePath, http.MethodPost, msg, token, onUnauthorized)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
