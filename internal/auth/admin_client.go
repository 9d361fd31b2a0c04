package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AdminClient talks to the Supabase Admin API with the service role key.
// Used only by the seed tool to provision a confirmed test user; the
// request path never touches it.
type AdminClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewAdminClient creates an admin client for the given Supabase project.
func NewAdminClient(supabaseURL, serviceKey string) *AdminClient {
	return &AdminClient{
		baseURL:    supabaseURL + "/auth/v1/admin",
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type adminUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CreateUser creates a confirmed user and returns their id. Confirmation
// is forced so the seed user can sign in without an email round trip.
func (c *AdminClient) CreateUser(email, password string) (string, error) {
	payload := map[string]interface{}{
		"email":         email,
		"password":      password,
		"email_confirm": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal create user request: %w", err)
	}

	respBody, err := c.do("POST", c.baseURL+"/users", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	var user adminUser
	if err := json.Unmarshal(respBody, &user); err != nil {
		return "", fmt.Errorf("decode create user response: %w", err)
	}
	return user.ID, nil
}

// DeleteUserByEmail deletes the user with the given email. Idempotent:
// a missing user is not an error, so seeding can always recreate the
// test user with a known password.
func (c *AdminClient) DeleteUserByEmail(email string) error {
	userID, err := c.findUserIDByEmail(email)
	if err != nil || userID == "" {
		return nil
	}

	if _, err := c.do("DELETE", c.baseURL+"/users/"+userID, nil); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (c *AdminClient) findUserIDByEmail(email string) (string, error) {
	respBody, err := c.do("GET", c.baseURL+"/users", nil)
	if err != nil {
		return "", fmt.Errorf("list users: %w", err)
	}

	var listResp struct {
		Users []adminUser `json:"users"`
	}
	if err := json.Unmarshal(respBody, &listResp); err != nil {
		return "", fmt.Errorf("decode list users response: %w", err)
	}

	for _, user := range listResp.Users {
		if user.Email == email {
			return user.ID, nil
		}
	}
	return "", nil
}

// do issues one authenticated admin request and returns the response body.
func (c *AdminClient) do(method, url string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
