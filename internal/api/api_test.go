package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"meal-planner/internal/app"
	"meal-planner/internal/database"
	"meal-planner/internal/ingredient"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
	"meal-planner/internal/storage"
)

type testServer struct {
	t      *testing.T
	server *Server
}

func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	return setupTestServerWithApp(t, app.Options{
		Attachments: app.AttachmentFunc(func(_ context.Context, filename string, r io.Reader) (string, error) {
			return "stored/" + filename, nil
		}),
	}, opts)
}

func setupTestServerWithApp(t *testing.T, appOpts app.Options, opts Options) *testServer {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "api.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	appOpts.IDs = ingredient.SequentialIDs("line")
	appOpts.Rand = rand.New(rand.NewPCG(7, 8))
	a := app.New(db, zap.NewNop(), appOpts)
	return &testServer{t: t, server: NewServer(a, zap.NewNop(), opts)}
}

func (ts *testServer) do(method, path, userID string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(userHeader, userID)
	}
	w := httptest.NewRecorder()
	ts.server.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the envelope's data field into v.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	var env struct {
		Data    json.RawMessage `json:"data"`
		Success bool            `json:"success"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	return env.Error
}

func (ts *testServer) saveRecipe(userID, name, text string, servings int) recipe.Recipe {
	ts.t.Helper()
	w := ts.do(http.MethodPost, "/ingredients/analyze", userID, analyzeRequest{Text: text})
	require.Equal(ts.t, http.StatusOK, w.Code, w.Body.String())
	var items []ingredient.LineItem
	decodeData(ts.t, w, &items)

	w = ts.do(http.MethodPost, "/recipes", userID, saveRecipeRequest{Name: name, Servings: servings, AnalyzedIngredients: items})
	require.Equal(ts.t, http.StatusOK, w.Code, w.Body.String())
	var res app.SaveResult
	decodeData(ts.t, w, &res)
	return res.Recipe
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t, Options{})
	w := ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"status":"ok"},"success":true}`, w.Body.String())
}

func TestRequireUser(t *testing.T) {
	ts := setupTestServer(t, Options{})
	w := ts.do(http.MethodGet, "/recipes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, errorOf(t, w), userHeader)
}

func TestCORS(t *testing.T) {
	ts := setupTestServer(t, Options{AllowedOrigins: []string{"https://planner.test"}})

	req := httptest.NewRequest(http.MethodOptions, "/recipes", nil)
	req.Header.Set("Origin", "https://planner.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	ts.server.ServeHTTP(w, req)

	assert.Equal(t, "https://planner.test", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecipeFlow(t *testing.T) {
	ts := setupTestServer(t, Options{})
	rec := ts.saveRecipe("u1", "Sauce", "300g Tomate\n1 Zwiebel", 2)
	require.Len(t, rec.AnalyzedIngredients, 2)
	assert.NotEmpty(t, rec.AnalyzedIngredients[0].CatalogID)

	t.Run("Get", func(t *testing.T) {
		w := ts.do(http.MethodGet, "/recipes/"+rec.ID, "u2", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got recipe.Recipe
		decodeData(t, w, &got)
		assert.Equal(t, "Sauce", got.Name)

		w = ts.do(http.MethodGet, "/recipes/missing", "u1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("List", func(t *testing.T) {
		w := ts.do(http.MethodGet, "/recipes?filter=own", "u2", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var own []recipe.Recipe
		decodeData(t, w, &own)
		assert.Empty(t, own)

		w = ts.do(http.MethodGet, "/recipes?filter=bogus", "u2", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("FavoritesSearchAndCategories", func(t *testing.T) {
		w := ts.do(http.MethodPost, "/recipes", "u2", saveRecipeRequest{Name: "Apfelkuchen", Servings: 8, Categories: []string{"Dessert", "Baking"}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var cake app.SaveResult
		decodeData(t, w, &cake)

		list := func(query string) []recipe.Recipe {
			t.Helper()
			w := ts.do(http.MethodGet, "/recipes"+query, "u2", nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var got []recipe.Recipe
			decodeData(t, w, &got)
			return got
		}

		assert.Empty(t, list("?filter=favorites"))
		w = ts.do(http.MethodPost, "/settings/favorites/"+rec.ID, "u2", nil)
		require.Equal(t, http.StatusOK, w.Code)

		favs := list("?filter=favorites")
		require.Len(t, favs, 1)
		assert.Equal(t, rec.ID, favs[0].ID)

		found := list("?q=zwiebel")
		require.Len(t, found, 1)
		assert.Equal(t, rec.ID, found[0].ID)

		found = list("?category=dessert&category=Baking")
		require.Len(t, found, 1)
		assert.Equal(t, cake.Recipe.ID, found[0].ID)
		assert.Empty(t, list("?category=Dessert&q=sauce"))
	})

	t.Run("Validation", func(t *testing.T) {
		w := ts.do(http.MethodPost, "/recipes", "u1", saveRecipeRequest{Servings: 0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		msg := errorOf(t, w)
		assert.Contains(t, msg, "name is required")
		assert.Contains(t, msg, "servings must be at least 1")

		req := httptest.NewRequest(http.MethodPost, "/recipes", strings.NewReader("{"))
		req.Header.Set(userHeader, "u1")
		rw := httptest.NewRecorder()
		ts.server.ServeHTTP(rw, req)
		assert.Equal(t, http.StatusBadRequest, rw.Code)
	})

	t.Run("Forbidden", func(t *testing.T) {
		body := saveRecipeRequest{ID: rec.ID, Name: "Mine now", Servings: 2}
		w := ts.do(http.MethodPost, "/recipes", "u2", body)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("ProposedUpdates", func(t *testing.T) {
		line := rec.AnalyzedIngredients[0]
		line.Category = ingredient.CategoryVegetables
		w := ts.do(http.MethodPost, "/recipes", "u1", saveRecipeRequest{
			ID: rec.ID, Name: rec.Name, Servings: 2, AnalyzedIngredients: []ingredient.LineItem{line},
		})
		require.Equal(t, http.StatusOK, w.Code)
		var res app.SaveResult
		decodeData(t, w, &res)
		require.Len(t, res.ProposedUpdates, 1)

		w = ts.do(http.MethodPost, "/ingredients/updates", "u1", catalogUpdatesRequest{Updates: res.ProposedUpdates})
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = ts.do(http.MethodGet, "/ingredients", "u1", nil)
		var catalog ingredient.Catalog
		decodeData(t, w, &catalog)
		assert.Equal(t, ingredient.CategoryVegetables, catalog.ByID()[line.CatalogID].Category)

		w = ts.do(http.MethodPost, "/ingredients/updates", "u1", catalogUpdatesRequest{})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = ts.do(http.MethodPost, "/ingredients/updates", "u1", catalogUpdatesRequest{Updates: []ingredient.CatalogUpdate{
			{CatalogID: "missing", After: ingredient.Ingredient{Name: "x"}},
		}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPlanAndShoppingFlow(t *testing.T) {
	ts := setupTestServer(t, Options{})
	rec := ts.saveRecipe("u1", "Sauce", "300g Tomate", 2)

	w := ts.do(http.MethodGet, "/plans/current", "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(http.MethodGet, "/plans/state", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"state":"NONE"},"success":true}`, w.Body.String())
	w = ts.do(http.MethodGet, "/shopping-list", "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPost, "/settings/noted/"+rec.ID, "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var settings planner.Settings
	decodeData(t, w, &settings)
	assert.Equal(t, []string{rec.ID}, settings.NotedRecipes)

	w = ts.do(http.MethodPost, "/plans", "u1", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var doc planner.Document
	decodeData(t, w, &doc)
	require.Len(t, doc.Plan.Meals(), 1)
	assert.Equal(t, planner.Monday, doc.Plan.Meals()[0].Day)

	w = ts.do(http.MethodPut, "/plans/current/tuesday/lunch", "u1", assignRequest{RecipeID: rec.ID, Servings: 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &doc)
	assert.Equal(t, 4, doc.Plan[planner.Tuesday].Lunch.Servings)

	w = ts.do(http.MethodPut, "/plans/current/someday/lunch", "u1", assignRequest{RecipeID: rec.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(http.MethodPut, "/plans/current/monday/brunch", "u1", assignRequest{RecipeID: rec.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodGet, "/shopping-list", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list shopping.List
	decodeData(t, w, &list)
	items := list[ingredient.CategoryOthers]
	require.Len(t, items, 1)
	assert.Equal(t, "Tomate", items[0].Name)
	assert.Equal(t, "900", items[0].Amount)
	assert.Equal(t, []planner.WeekDay{planner.Monday, planner.Tuesday}, items[0].UsedOnDays)

	w = ts.do(http.MethodPost, "/plans/current/random/dinner", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &doc)
	assert.NotNil(t, doc.Plan[planner.Monday].Dinner)
	assert.Nil(t, doc.Plan[planner.Tuesday].Dinner)

	w = ts.do(http.MethodPost, "/plans/current/sunday/lunch/random", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &doc)
	assert.Equal(t, rec.ID, doc.Plan[planner.Sunday].Lunch.RecipeID)

	w = ts.do(http.MethodGet, "/plans/previous", "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(http.MethodPost, "/plans", "u1", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = ts.do(http.MethodGet, "/plans/previous", "u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/plans/state", "u1", nil)
	assert.JSONEq(t, `{"data":{"state":"ACTIVE"},"success":true}`, w.Body.String())

	w = ts.do(http.MethodGet, "/plans/history", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []planner.Document
	decodeData(t, w, &history)
	require.Len(t, history, 2)
	assert.True(t, history[0].IsCurrent)
	assert.Equal(t, rec.ID, history[1].Plan[planner.Sunday].Lunch.RecipeID)

	w = ts.do(http.MethodGet, "/plans/history?limit=1", "u1", nil)
	decodeData(t, w, &history)
	assert.Len(t, history, 1)
	w = ts.do(http.MethodGet, "/plans/history?limit=abc", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(http.MethodGet, "/plans/history?limit=0", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.do(http.MethodGet, "/settings", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var settings planner.Settings
	decodeData(t, w, &settings)
	assert.Equal(t, planner.DefaultSettings("u1", 0), settings)

	w = ts.do(http.MethodPut, "/settings", "u1", planner.Settings{DefaultServings: 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorOf(t, w), "default_servings")

	w = ts.do(http.MethodPut, "/settings", "u1", planner.Settings{ManageDinner: true, DefaultServings: 3})
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &settings)
	assert.False(t, settings.ManageLunch)
	assert.Equal(t, 3, settings.DefaultServings)

	w = ts.do(http.MethodPost, "/settings/favorites/missing", "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadAttachment(t *testing.T) {
	ts := setupTestServer(t, Options{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "photo.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/attachments", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(userHeader, "u1")
	w := httptest.NewRecorder()
	ts.server.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res attachmentResponse
	decodeData(t, w, &res)
	assert.Equal(t, "stored/photo.jpg", res.Ref)

	w = ts.do(http.MethodPost, "/attachments", "u1", map[string]string{"file": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServeLocalAttachment(t *testing.T) {
	files, err := storage.NewFileStore(filepath.Join(t.TempDir(), "files"))
	require.NoError(t, err)
	ts := setupTestServerWithApp(t, app.Options{Attachments: files}, Options{})

	ref, err := files.Save(context.Background(), "soup.jpg", strings.NewReader("jpegdata"))
	require.NoError(t, err)

	w := ts.do(http.MethodGet, "/attachments/"+ref, "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "jpegdata", w.Body.String())

	w = ts.do(http.MethodGet, "/attachments/.hidden", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodDelete, "/attachments/"+ref, "u1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(http.MethodGet, "/attachments/"+ref, "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	remote := setupTestServer(t, Options{})
	w = remote.do(http.MethodGet, "/attachments/"+ref, "u1", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestClipNotConfigured(t *testing.T) {
	ts := setupTestServer(t, Options{})
	w := ts.do(http.MethodPost, "/recipes/clip", "u1", clipRequest{URL: "https://recipes.test/soup"})
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = ts.do(http.MethodPost, "/recipes/clip", "u1", clipRequest{URL: "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookMount(t *testing.T) {
	called := false
	ts := setupTestServer(t, Options{Webhook: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})})

	w := ts.do(http.MethodPost, "/webhook", "", map[string]string{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}
