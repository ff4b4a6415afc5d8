package authsdk

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// RefreshCookieName is the cookie the service stores the refresh token in.
const RefreshCookieName = "jwt"

// SDKClient is a client for the auth service. Its HTTP client carries a
// cookie jar so the refresh cookie set by signup and login is replayed on
// refresh and logout, the same way a browser would.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client with an empty cookie jar.
func NewSDKClient(baseURL string) *SDKClient {
	jar, _ := cookiejar.New(nil) // never fails with nil options
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// AuthenticateWithPassword logs in and wraps the result in a Session.
func (c *SDKClient) AuthenticateWithPassword(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.Login(ctx, LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return newSession(c, resp), nil
}

// Register signs up and wraps the result in a Session.
func (c *SDKClient) Register(ctx context.Context, req SignupRequest) (*Session, error) {
	resp, err := c.Signup(ctx, req)
	if err != nil {
		return nil, err
	}
	return newSession(c, resp), nil
}

// RefreshCookie returns the refresh token currently held in the jar, or "".
func (c *SDKClient) RefreshCookie() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil || c.HTTPClient.Jar == nil {
		return ""
	}
	for _, ck := range c.HTTPClient.Jar.Cookies(u) {
		if ck.Name == RefreshCookieName {
			return ck.Value
		}
	}
	return ""
}

// SetRefreshCookie places token in the jar as if the server had set it.
// An empty token removes the cookie.
func (c *SDKClient) SetRefreshCookie(token string) error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return err
	}
	if c.HTTPClient.Jar == nil {
		jar, _ := cookiejar.New(nil)
		c.HTTPClient.Jar = jar
	}

	ck := &http.Cookie{Name: RefreshCookieName, Value: token, Path: "/"}
	if token == "" {
		ck.MaxAge = -1
	}
	c.HTTPClient.Jar.SetCookies(u, []*http.Cookie{ck})
	return nil
}
