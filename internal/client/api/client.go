package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/atinyakov/PlantCare/internal/apperr"
	"github.com/atinyakov/PlantCare/internal/care"
	"github.com/atinyakov/PlantCare/internal/models"
)

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	Tokens
	User models.User `json:"user"`
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// Client offers typed calls over a Gateway. Every method returns either
// data or an *Error; transport failures never escape raw.
type Client struct {
	gw      *Gateway
	session *Session
}

// NewClient wraps gw. session, if not nil, receives the tokens issued by
// Register and Login and is cleared by Logout and DeleteMe.
func NewClient(gw *Gateway, session *Session) *Client {
	return &Client{gw: gw, session: session}
}

// Register creates an account and starts a session for it.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, invalid(apperr.Invalid("", "Username and password are required"))
	}
	var out AuthResponse
	if err := c.gw.Do(ctx, http.MethodPost, "/api/auth/register/", WithJSON(req), NoAuth()).Decode(&out); err != nil {
		return nil, err
	}
	c.remember(out.Tokens)
	return &out, nil
}

// Login starts a session.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	if username == "" || password == "" {
		return nil, invalid(apperr.Invalid("", "Username and password are required"))
	}
	var out AuthResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.gw.Do(ctx, http.MethodPost, "/api/auth/login/", WithJSON(body), NoAuth()).Decode(&out); err != nil {
		return nil, err
	}
	c.remember(out.Tokens)
	return &out, nil
}

// Logout ends the session. The local tokens are dropped even when the
// server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	err := c.gw.Do(ctx, http.MethodPost, "/api/auth/logout/").Err()
	if c.session != nil {
		c.session.Clear()
	}
	return err
}

// Me returns the caller's account.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.gw.Do(ctx, http.MethodGet, "/api/users/me/").Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateMe changes the supplied account fields.
func (c *Client) UpdateMe(ctx context.Context, p models.UserPatch) (*models.User, error) {
	var u models.User
	if err := c.gw.Do(ctx, http.MethodPatch, "/api/users/me/", WithJSON(p)).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteMe removes the caller's account and ends the session.
func (c *Client) DeleteMe(ctx context.Context) error {
	if err := c.gw.Do(ctx, http.MethodDelete, "/api/users/me/").Err(); err != nil {
		return err
	}
	if c.session != nil {
		c.session.Clear()
	}
	return nil
}

// ListPlants returns the caller's plants, newest first.
func (c *Client) ListPlants(ctx context.Context) ([]models.Plant, error) {
	var out []models.Plant
	if err := c.gw.Do(ctx, http.MethodGet, "/api/plants/").Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPlant returns one plant with its logs.
func (c *Client) GetPlant(ctx context.Context, id int64) (*models.Plant, error) {
	var p models.Plant
	if err := c.gw.Do(ctx, http.MethodGet, plantPath(id)).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlant validates in locally, then creates the plant.
func (c *Client) CreatePlant(ctx context.Context, in models.PlantInput) (*models.Plant, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	var p models.Plant
	if err := c.gw.Do(ctx, http.MethodPost, "/api/plants/", WithJSON(in)).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePlant changes the supplied fields of a plant.
func (c *Client) UpdatePlant(ctx context.Context, id int64, patch models.PlantPatch) (*models.Plant, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, invalid(err)
	}
	var p models.Plant
	if err := c.gw.Do(ctx, http.MethodPatch, plantPath(id), WithJSON(patch)).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePlant removes a plant and its logs.
func (c *Client) DeletePlant(ctx context.Context, id int64) error {
	return c.gw.Do(ctx, http.MethodDelete, plantPath(id)).Err()
}

// PlantSummary returns the maintenance summary of a plant. Zero days or
// threshold use the server defaults.
func (c *Client) PlantSummary(ctx context.Context, id int64, days, threshold int) (*models.CareSummary, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	if threshold > 0 {
		q.Set("threshold", strconv.Itoa(threshold))
	}
	var s models.CareSummary
	if err := c.gw.Do(ctx, http.MethodGet, plantPath(id)+"summary/", WithQuery(q)).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListLogs returns every log on the caller's plants.
func (c *Client) ListLogs(ctx context.Context) ([]models.Log, error) {
	var out []models.Log
	if err := c.gw.Do(ctx, http.MethodGet, "/api/logs/").Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPlantLogs returns the logs of one plant.
func (c *Client) ListPlantLogs(ctx context.Context, plantID int64) ([]models.Log, error) {
	var out []models.Log
	if err := c.gw.Do(ctx, http.MethodGet, plantPath(plantID)+"logs/").Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetLog returns one log.
func (c *Client) GetLog(ctx context.Context, id int64) (*models.Log, error) {
	var l models.Log
	if err := c.gw.Do(ctx, http.MethodGet, logPath(id)).Decode(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLog validates in locally, then records the activity.
func (c *Client) CreateLog(ctx context.Context, in models.LogInput) (*models.Log, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	var l models.Log
	if err := c.gw.Do(ctx, http.MethodPost, "/api/logs/", WithJSON(in)).Decode(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateLog changes the log type or sunlight hours.
func (c *Client) UpdateLog(ctx context.Context, id int64, patch models.LogPatch) (*models.Log, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, invalid(err)
	}
	var l models.Log
	if err := c.gw.Do(ctx, http.MethodPatch, logPath(id), WithJSON(patch)).Decode(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteLog removes one log.
func (c *Client) DeleteLog(ctx context.Context, id int64) error {
	return c.gw.Do(ctx, http.MethodDelete, logPath(id)).Err()
}

// CareTemplates lists the per-category care defaults.
func (c *Client) CareTemplates(ctx context.Context) ([]care.Template, error) {
	var out []care.Template
	if err := c.gw.Do(ctx, http.MethodGet, "/api/care-templates/", NoAuth()).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUsers lists every account. The gateway must carry the service
// credential.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.gw.Do(ctx, http.MethodGet, "/api/service/users/").Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) remember(t Tokens) {
	if c.session != nil {
		c.session.Set(t)
	}
}

func plantPath(id int64) string { return fmt.Sprintf("/api/plants/%d/", id) }

func logPath(id int64) string { return fmt.Sprintf("/api/logs/%d/", id) }

// invalid reports a locally rejected request the way the server would.
func invalid(err error) error {
	return &Error{Status: http.StatusBadRequest, Message: err.Error()}
}
