package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// fakeEventService хранит корзину одного события в памяти.
type fakeEventService struct {
	mu       sync.Mutex
	items    []map[string]interface{}
	saved    map[string]interface{}
	authSeen string
}

func (f *fakeEventService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.authSeen = r.Header.Get("Authorization")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/events/E1/cart":
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": f.items, "budget_set": 5000})
	case r.Method == http.MethodPost && r.URL.Path == "/api/events/E1/cart/add":
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		body["id"] = fmt.Sprintf("i%d", len(f.items)+1)
		f.items = append(f.items, body)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"item": body, "budget_status": "ok"})
	case r.Method == http.MethodPost && r.URL.Path == "/api/events/E1/planner/state":
		_ = json.NewDecoder(r.Body).Decode(&f.saved)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPost && r.URL.Path == "/api/events/E1/planner/finalize":
		bookings := make([]map[string]interface{}, 0, len(f.items))
		var total float64
		for _, item := range f.items {
			price, _ := item["price"].(float64)
			total += price
			bookings = append(bookings, map[string]interface{}{"id": "b-" + item["id"].(string), "vendor_id": item["vendor_id"], "service_type": item["service_type"], "amount": price, "status": "confirmed"})
		}
		f.items = nil
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"bookings_created": bookings, "total_cost": total})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) { f.Changed = false }
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}

	apiBaseURL, apiToken, outputFormat = "", "", outputTable
	eventBudget, verbose = 0, false
	addVendorID, addVendorName = "", ""
	addRecommendedPrice, addMinPrice, addBasePrice = 0, 0, 0
	progressStep, progressCompleted = 0, nil
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Setenv("ENV_FILE", "")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// TestCartAddAndShow проверяет добавление услуги и вывод корзины в JSON.
func TestCartAddAndShow(t *testing.T) {
	service := &fakeEventService{}
	srv := httptest.NewServer(service)
	t.Cleanup(srv.Close)
	db := filepath.Join(t.TempDir(), "snapshots.db")

	_, _, err := run(t, "cart", "add", "E1", "venue", "--api", srv.URL+"/api", "--token", "tok", "--db", db,
		"--vendor-id", "v1", "--vendor-name", "Hall", "--min-price", "1200", "--base-price", "900")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", service.authSeen)
	assert.Equal(t, 1200.0, service.items[0]["price"])

	out, _, err := run(t, "cart", "show", "E1", "--api", srv.URL+"/api", "--db", db, "-o", "json")
	require.NoError(t, err)

	var view sessionView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, map[string]string{"venue": "v1"}, view.SelectedServices)
	assert.Equal(t, 5000.0, view.BudgetSet)
	assert.Equal(t, 3800.0, view.Remaining)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "i1", view.Items[0].ID)
}

// TestProgressSaveFallsBackToSnapshot проверяет локальный снапшот при недоступном сервисе.
func TestProgressSaveFallsBackToSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL + "/api"
	srv.Close()
	db := filepath.Join(t.TempDir(), "snapshots.db")

	_, stderr, err := run(t, "progress", "save", "E1", "--api", baseURL, "--db", db, "--step", "3", "--completed", "0,1,2")
	require.NoError(t, err)
	assert.Contains(t, stderr, "saved locally only")

	out, _, err := run(t, "snapshot", "show", "E1", "--db", db, "-o", "yaml")
	require.NoError(t, err)

	var saved snapshotView
	require.NoError(t, yaml.Unmarshal([]byte(out), &saved))
	assert.Equal(t, "E1", saved.EventID)
	assert.Equal(t, 3, saved.CurrentStep)
	assert.Equal(t, []int{0, 1, 2}, saved.CompletedSteps)

	_, _, err = run(t, "snapshot", "delete", "E1", "--db", db)
	require.NoError(t, err)

	_, _, err = run(t, "snapshot", "show", "E1", "--db", db)
	assert.Error(t, err)
}

// TestProgressSaveAndFinalize проверяет сохранение прогресса и финализацию.
func TestProgressSaveAndFinalize(t *testing.T) {
	service := &fakeEventService{}
	srv := httptest.NewServer(service)
	t.Cleanup(srv.Close)
	db := filepath.Join(t.TempDir(), "snapshots.db")
	api := srv.URL + "/api"

	_, _, err := run(t, "cart", "add", "E1", "catering", "--api", api, "--db", db, "--vendor-id", "v2", "--vendor-name", "Food")
	require.NoError(t, err)

	out, _, err := run(t, "progress", "save", "E1", "--api", api, "--db", db, "--step", "2", "--completed", "0,1")
	require.NoError(t, err)
	assert.Contains(t, out, "progress saved")
	assert.Equal(t, float64(2), service.saved["current_step"])
	assert.Equal(t, map[string]interface{}{"selected_services": map[string]interface{}{"catering": "v2"}}, service.saved["step_data"])

	out, _, err = run(t, "finalize", "E1", "--api", api, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "1 bookings created")
	assert.True(t, strings.Contains(out, "total 1000.00"), out)

	_, _, err = run(t, "snapshot", "show", "E1", "--db", db)
	assert.Error(t, err, "finalize removes the local snapshot")
}

// TestUnknownOutputFormat проверяет отказ на неизвестный формат вывода.
func TestUnknownOutputFormat(t *testing.T) {
	_, _, err := run(t, "snapshot", "show", "E1", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}
