package ghost

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
)

const pageSize = 50

// Post represents a single recipe post from the Ghost API.
type Post struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	HTML         string `json:"html"`
	URL          string `json:"url"`
	FeatureImage string `json:"feature_image"`
	UpdatedAt    string `json:"updated_at"`
}

// PostsResponse is the top-level structure of the Ghost API response for posts.
type PostsResponse struct {
	Posts []Post `json:"posts"`
	Meta  struct {
		Pagination struct {
			Page  int  `json:"page"`
			Pages int  `json:"pages"`
			Next  *int `json:"next"`
		} `json:"pagination"`
	} `json:"meta"`
}

type imagesResponse struct {
	Images []struct {
		URL string `json:"url"`
		Ref string `json:"ref"`
	} `json:"images"`
}

// Client talks to the Ghost Content and Admin APIs.
type Client struct {
	http       *resty.Client
	contentKey string
	adminKey   string
}

// NewClient creates a new Ghost API client. The admin key is only needed for uploads.
func NewClient(baseURL, contentKey, adminKey string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(30 * time.Second).
			SetHeader("Accept-Version", "v5.0"),
		contentKey: contentKey,
		adminKey:   adminKey,
	}
}

// FetchRecipes fetches all posts (recipes) from the Ghost Content API, following pagination.
func (c *Client) FetchRecipes(ctx context.Context) ([]Post, error) {
	var posts []Post
	for page := 1; ; page++ {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"key":     c.contentKey,
				"formats": "html",
				"limit":   strconv.Itoa(pageSize),
				"page":    strconv.Itoa(page),
			}).
			Get("/ghost/api/v3/content/posts/")
		if err != nil {
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("content api error: status %d", resp.StatusCode())
		}

		var postsResponse PostsResponse
		if err := json.Unmarshal(resp.Body(), &postsResponse); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		posts = append(posts, postsResponse.Posts...)

		if postsResponse.Meta.Pagination.Next == nil || len(postsResponse.Posts) == 0 {
			return posts, nil
		}
	}
}

// UploadImage stores a file through the Admin API and returns its public URL.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	token, err := c.createAdminToken()
	if err != nil {
		return "", fmt.Errorf("failed to create admin token: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Ghost "+token).
		SetFileReader("file", filename, r).
		SetFormData(map[string]string{"purpose": "image", "ref": filename}).
		Post("/ghost/api/v3/admin/images/upload/")
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("admin api error: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	var images imagesResponse
	if err := json.Unmarshal(resp.Body(), &images); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if len(images.Images) == 0 || images.Images[0].URL == "" {
		return "", fmt.Errorf("no image returned from api")
	}
	return images.Images[0].URL, nil
}

// createAdminToken generates a short-lived JWT for the Admin API.
func (c *Client) createAdminToken() (string, error) {
	id, secretHex, ok := strings.Cut(c.adminKey, ":")
	if !ok || id == "" {
		return "", fmt.Errorf("invalid admin key format: expected id:secret")
	}

	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
		"aud": "/v3/admin/",
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}
