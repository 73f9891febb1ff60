package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shaiso/Pulse/internal/domain"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// SolutionResponse — решение из API.
type SolutionResponse struct {
	ID        string           `json:"id"`
	LevelID   string           `json:"level_id"`
	Name      string           `json:"name,omitempty"`
	Graph     domain.GraphSpec `json:"graph"`
	CreatedAt string           `json:"created_at"`
}

// GradeResponse — проверка из API.
type GradeResponse struct {
	ID             string `json:"id"`
	SolutionID     string `json:"solution_id"`
	LevelID        string `json:"level_id"`
	Policy         string `json:"policy"`
	Status         string `json:"status"`
	Strides        int    `json:"strides"`
	Steps          int    `json:"steps"`
	PassedCases    int    `json:"passed_cases"`
	TotalCases     int    `json:"total_cases"`
	Error          string `json:"error,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
	StartedAt      string `json:"started_at,omitempty"`
	FinishedAt     string `json:"finished_at,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// --- Request types ---

// CreateSolutionRequest — сохранение решения.
type CreateSolutionRequest struct {
	LevelID string           `json:"level_id"`
	Name    string           `json:"name,omitempty"`
	Graph   domain.GraphSpec `json:"graph"`
}

// SubmitGradeRequest — отправка на проверку.
type SubmitGradeRequest struct {
	Policy         string `json:"policy,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// ListSolutionsOpts — параметры фильтрации решений.
type ListSolutionsOpts struct {
	LevelID string
	Limit   int
}

// ListGradesOpts — параметры фильтрации проверок.
type ListGradesOpts struct {
	SolutionID string
	Status     string
	Limit      int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Fields  []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"fields"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Pulse API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Solutions ---

// CreateSolution сохраняет решение.
func (c *Client) CreateSolution(req CreateSolutionRequest) (*SolutionResponse, error) {
	var sol SolutionResponse
	err := c.post("/api/v1/solutions", req, &sol)
	return &sol, err
}

// GetSolution возвращает решение по ID.
func (c *Client) GetSolution(id string) (*SolutionResponse, error) {
	var sol SolutionResponse
	err := c.get("/api/v1/solutions/"+url.PathEscape(id), &sol)
	return &sol, err
}

// ListSolutions возвращает решения с фильтрацией.
func (c *Client) ListSolutions(opts ListSolutionsOpts) ([]SolutionResponse, error) {
	params := url.Values{}
	if opts.LevelID != "" {
		params.Set("level_id", opts.LevelID)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	var solutions []SolutionResponse
	err := c.list("/api/v1/solutions", params, &solutions)
	return solutions, err
}

// DeleteSolution удаляет решение.
func (c *Client) DeleteSolution(id string) error {
	return c.delete("/api/v1/solutions/" + url.PathEscape(id))
}

// --- Grades ---

// SubmitGrade отправляет решение на проверку.
func (c *Client) SubmitGrade(solutionID string, req SubmitGradeRequest) (*GradeResponse, error) {
	var grade GradeResponse
	err := c.post("/api/v1/solutions/"+url.PathEscape(solutionID)+"/grades", req, &grade)
	return &grade, err
}

// GetGrade возвращает проверку по ID.
func (c *Client) GetGrade(id string) (*GradeResponse, error) {
	var grade GradeResponse
	err := c.get("/api/v1/grades/"+url.PathEscape(id), &grade)
	return &grade, err
}

// ListGrades возвращает проверки с фильтрацией.
func (c *Client) ListGrades(opts ListGradesOpts) ([]GradeResponse, error) {
	params := url.Values{}
	if opts.SolutionID != "" {
		params.Set("solution_id", opts.SolutionID)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	var grades []GradeResponse
	err := c.list("/api/v1/grades", params, &grades)
	return grades, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	msg := fmt.Sprintf("%s: %s", er.Error.Code, er.Error.Message)
	for _, f := range er.Error.Fields {
		msg += fmt.Sprintf("; %s %s", f.Field, f.Message)
	}
	return fmt.Errorf("%s", msg)
}
