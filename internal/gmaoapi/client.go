package gmaoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ErrNotFound marks a 404 from the maintenance backend.
var ErrNotFound = errors.New("gmaoapi: not found")

// ErrUnauthorized marks a rejected or expired session.
var ErrUnauthorized = errors.New("gmaoapi: unauthorized")

// Client is a minimal REST client for the GMAO maintenance backend.
type Client struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	token string
}

// Option customizes the client.
type Option func(*Client)

// WithTimeout overrides the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// NewClient constructs a backend client. token may be empty; a later
// Login fills it.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("gmaoapi: empty base url")
	}
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// User is the backend account attached to the session.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
	Role      string `json:"role"`
}

// Traitement is the repair record closing out an intervention.
type Traitement struct {
	ID                    int     `json:"id,omitempty"`
	InterventionID        int     `json:"intervention_id"`
	DureeFixation         float64 `json:"duree_fixation,omitempty"`
	HeuresArretMachine    float64 `json:"heures_arret_machine,omitempty"`
	DescriptionReparation string  `json:"description_reparation,omitempty"`
	PiecesChangees        string  `json:"pieces_changees,omitempty"`
	TypeFixation          string  `json:"type_fixation,omitempty"`
	TransfertSpecialiste  bool    `json:"transfert_specialiste,omitempty"`
	StatutFinal           string  `json:"statut_final,omitempty"`
}

// InterventionRequest is a new maintenance request from an operator.
type InterventionRequest struct {
	EquipementID int    `json:"equipement_id"`
	TypeArret    string `json:"type_arret"`
	Description  string `json:"description"`
	Priorite     string `json:"priorite"`
	TypeProbleme string `json:"type_probleme"`
	DemandeurNom string `json:"demandeur_nom,omitempty"`
}

// EquipmentsStatus fetches the equipment status list from
// GET /equipments/status.
func (c *Client) EquipmentsStatus(ctx context.Context) ([]map[string]any, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/equipments/status", nil, &raw); err != nil {
		return nil, err
	}
	return DecodeStatusItems(raw)
}

// InterventionsStatus fetches the full intervention status list from
// GET /tech/interventions-status.
func (c *Client) InterventionsStatus(ctx context.Context) ([]map[string]any, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/tech/interventions-status", nil, &raw); err != nil {
		return nil, err
	}
	return DecodeStatusItems(raw)
}

// InterventionsStatusSimple fetches only equipments with open problems
// from GET /tech/interventions-status-simple.
func (c *Client) InterventionsStatusSimple(ctx context.Context) ([]map[string]any, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/tech/interventions-status-simple", nil, &raw); err != nil {
		return nil, err
	}
	return DecodeStatusItems(raw)
}

// CreateIntervention submits a new maintenance request.
func (c *Client) CreateIntervention(ctx context.Context, req InterventionRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/demandeur/interventions", req, nil)
}

// CreateTraitement records a repair for an intervention.
func (c *Client) CreateTraitement(ctx context.Context, t Traitement) (Traitement, error) {
	var created Traitement
	if err := c.doJSON(ctx, http.MethodPost, "/tech/traitements", t, &created); err != nil {
		return Traitement{}, err
	}
	return created, nil
}

// UpdateTraitement amends an existing repair record.
func (c *Client) UpdateTraitement(ctx context.Context, id int, t Traitement) error {
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/tech/traitements/%d", id), t, nil)
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// Login opens a backend session and stores its token for subsequent
// requests.
func (c *Client) Login(ctx context.Context, username, password string) (User, error) {
	if username == "" || password == "" {
		return User{}, errors.New("gmaoapi: empty credentials")
	}
	body := map[string]string{"username": username, "password": password}
	var resp loginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return User{}, err
	}
	if resp.Token != "" {
		c.mu.Lock()
		c.token = resp.Token
		c.mu.Unlock()
	}
	return resp.User, nil
}

// Logout closes the backend session and drops the stored token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	return err
}

type profileResponse struct {
	User User `json:"user"`
}

// Profile fetches the account attached to the current session.
func (c *Client) Profile(ctx context.Context) (User, error) {
	var resp profileResponse
	if err := c.doJSON(ctx, http.MethodGet, "/auth/profile", nil, &resp); err != nil {
		return User{}, err
	}
	return resp.User, nil
}

// Authenticated reports whether a session token is held.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// DecodeStatusItems unwraps the status payload envelopes the backend
// has shipped across revisions: a bare array, or an object wrapping the
// list under "equipments", "interventions" or "data". Shapes are tried
// in order, first match wins. A valid JSON object without a known list
// key decodes to an empty batch rather than an error; only malformed
// JSON fails.
func DecodeStatusItems(raw json.RawMessage) ([]map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var bare []json.RawMessage
	if err := json.Unmarshal(raw, &bare); err == nil {
		return decodeItems(bare), nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("gmaoapi: malformed status payload: %w", err)
	}
	for _, key := range []string{"equipments", "interventions", "data"} {
		entry, ok := envelope[key]
		if !ok {
			continue
		}
		var list []json.RawMessage
		if err := json.Unmarshal(entry, &list); err != nil {
			continue
		}
		return decodeItems(list), nil
	}
	return nil, nil
}

func decodeItems(list []json.RawMessage) []map[string]any {
	items := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		var item map[string]any
		if err := json.Unmarshal(entry, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 300:
		return fmt.Errorf("gmaoapi: http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
