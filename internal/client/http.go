// Package client is the JSON client of the rentnest API used by rentctl.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/utils"
)

type HTTP struct {
	Base  string
	Token string
	HTTP  *http.Client
}

func NewHTTP(base, token string, hc *http.Client) *HTTP {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTP{Base: strings.TrimRight(base, "/"), Token: token, HTTP: hc}
}

func (c *HTTP) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPost, "/auth/register", reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTP) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	var out models.LoginResult
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTP) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *HTTP) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTP) Search(ctx context.Context, f models.Filter) (*models.Page[models.Property], error) {
	var out models.Page[models.Property]
	if err := c.do(ctx, http.MethodGet, "/properties?"+FilterQuery(f).Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTP) Property(ctx context.Context, id string) (*models.Property, error) {
	var out models.Property
	if err := c.do(ctx, http.MethodGet, "/properties/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTP) Post(ctx context.Context, draft models.Property) (*models.Property, error) {
	var out models.Property
	if err := c.do(ctx, http.MethodPost, "/properties", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTP) SetStatus(ctx context.Context, id string, status models.PropertyStatus) (*models.Property, error) {
	var out models.Property
	in := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPost, "/properties/"+url.PathEscape(id)+"/status", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTP) MyListings(ctx context.Context) (*models.Page[models.Property], error) {
	var out models.Page[models.Property]
	if err := c.do(ctx, http.MethodGet, "/me/properties?page_size="+strconv.Itoa(models.MaxPageSize), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadImage sends the raw photo bytes as the request body.
func (c *HTTP) UploadImage(ctx context.Context, propertyID string, data []byte) (*models.PropertyImage, error) {
	req, err := c.request(ctx, http.MethodPost, "/properties/"+url.PathEscape(propertyID)+"/images", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	var out models.PropertyImage
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTP) Shortlist(ctx context.Context) ([]models.Property, error) {
	var out []models.Property
	if err := c.do(ctx, http.MethodGet, "/me/shortlist", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTP) AddToShortlist(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/me/shortlist/"+url.PathEscape(id), nil, nil)
}

func (c *HTTP) RemoveFromShortlist(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/me/shortlist/"+url.PathEscape(id), nil, nil)
}

func (c *HTTP) RecentSearches(ctx context.Context) ([]models.SearchEntry, error) {
	var out []models.SearchEntry
	if err := c.do(ctx, http.MethodGet, "/me/searches", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTP) CreateLead(ctx context.Context, propertyID string, req models.LeadRequest) (*models.Lead, error) {
	var out models.Lead
	if err := c.do(ctx, http.MethodPost, "/properties/"+url.PathEscape(propertyID)+"/leads", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTP) SentLeads(ctx context.Context) ([]models.Lead, error) {
	var out []models.Lead
	if err := c.do(ctx, http.MethodGet, "/me/leads", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTP) Inbox(ctx context.Context, status models.LeadStatus) ([]models.Lead, error) {
	path := "/me/inbox"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var out []models.Lead
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTP) UpdateLeadStatus(ctx context.Context, id string, status models.LeadStatus) (*models.Lead, error) {
	var out models.Lead
	in := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPost, "/leads/"+url.PathEscape(id)+"/status", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTP) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	var out models.Dashboard
	if err := c.do(ctx, http.MethodGet, "/me/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FilterQuery encodes f the way the server parses it.
func FilterQuery(f models.Filter) url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("q", f.Query)
	set("city", f.City)
	set("locality", f.Locality)
	set("tenant_preference", string(f.TenantPreference))
	set("sort", string(f.Sort))
	if f.MinRent > 0 {
		q.Set("min_rent", strconv.FormatInt(f.MinRent, 10))
	}
	if f.MaxRent > 0 {
		q.Set("max_rent", strconv.FormatInt(f.MaxRent, 10))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(f.PageSize))
	}
	for _, b := range f.BHK {
		q.Add("bhk", strconv.Itoa(b))
	}
	for _, t := range f.Types {
		q.Add("type", string(t))
	}
	for _, fu := range f.Furnishing {
		q.Add("furnishing", string(fu))
	}
	for _, a := range f.Amenities {
		q.Add("amenity", a)
	}
	return q
}

func (c *HTTP) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		body = buf
	}
	req, err := c.request(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *HTTP) request(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

// send performs req. Non-2xx answers become *utils.CustomError with the
// server's status and message.
func (c *HTTP) send(req *http.Request, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		var e utils.ErrorBody
		if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e) != nil || e.Error == "" {
			e.Error = resp.Status
		}
		return utils.New(resp.StatusCode, fmt.Sprintf("%s %s: %s", req.Method, req.URL.Path, e.Error))
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
