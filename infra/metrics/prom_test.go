package metrics

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/commutecarbon/auth"
	"github.com/kilianp07/commutecarbon/core/factory"
	coremetrics "github.com/kilianp07/commutecarbon/core/metrics"
)

func TestPromSink_Records(t *testing.T) {
	sink, err := NewPromSink(PromConfig{})
	require.NoError(t, err)

	require.NoError(t, sink.RecordEpoch(coremetrics.EpochEvent{Epoch: 7, TrainLoss: 1.5, HeldOutLoss: 2.25}))
	assert.Equal(t, 7.0, testutil.ToFloat64(sink.epoch))
	assert.Equal(t, 1.5, testutil.ToFloat64(sink.trainLoss))
	assert.Equal(t, 2.25, testutil.ToFloat64(sink.heldOutLoss))

	require.NoError(t, sink.RecordEvaluation(coremetrics.EvaluationEvent{Model: "regressor", Samples: 4, MSE: 0.04, RMSE: 0.2, MAE: 0.1, R2: 0.9}))
	assert.Equal(t, 0.2, testutil.ToFloat64(sink.evaluation.WithLabelValues("regressor", "rmse")))
	assert.Equal(t, 4.0, testutil.ToFloat64(sink.evaluation.WithLabelValues("regressor", "samples")))

	for i := 0; i < 2; i++ {
		require.NoError(t, sink.RecordPrediction(coremetrics.PredictionEvent{Traffic: "low", PredictedKg: 3.1 + float64(i)}))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.predictions.WithLabelValues("low")))
	assert.Equal(t, 4.1, testutil.ToFloat64(sink.co2.WithLabelValues("low")))
}

func TestPromSink_AlreadyRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(PromConfig{}, reg, reg)
	require.NoError(t, err)
	b, err := NewPromSinkWithRegistry(PromConfig{}, reg, reg)
	require.NoError(t, err)
	require.NoError(t, a.RecordEpoch(coremetrics.EpochEvent{Epoch: 3}))
	assert.Equal(t, 3.0, testutil.ToFloat64(b.epoch), "second sink must share collectors")
}

func TestPromSink_FlushTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commute.prom")
	sink, err := NewPromSink(PromConfig{Textfile: path})
	require.NoError(t, err)
	require.NoError(t, sink.RecordEpoch(coremetrics.EpochEvent{Epoch: 1, TrainLoss: 0.5, HeldOutLoss: 0.75}))
	require.NoError(t, sink.RecordEvaluation(coremetrics.EvaluationEvent{Model: "baseline", R2: math.NaN()}))
	require.NoError(t, sink.Flush(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "commute_training_loss 0.5")
	assert.Contains(t, string(data), `commute_evaluation{metric="r2",model="baseline"} NaN`)
}

func TestPromSink_FlushPush(t *testing.T) {
	var gotPath, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink, err := NewPromSink(PromConfig{PushURL: srv.URL, Job: "nightly"})
	require.NoError(t, err)
	require.NoError(t, sink.RecordEpoch(coremetrics.EpochEvent{Epoch: 2}))
	require.NoError(t, sink.Flush(context.Background()))
	assert.Equal(t, "/metrics/job/nightly", gotPath)
	assert.NotEmpty(t, body)
}

func TestPromSink_FlushPushOAuth2(t *testing.T) {
	tokens := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"push-token","token_type":"bearer","expires_in":3600}`))
	}))
	defer tokens.Close()

	var authHeader string
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer gw.Close()

	sink, err := NewPromSink(PromConfig{
		PushURL: gw.URL,
		OAuth2:  auth.Conf{ClientID: "id", ClientSecret: "secret", TokenURL: tokens.URL},
	})
	require.NoError(t, err)
	require.NoError(t, sink.Flush(context.Background()))
	assert.Equal(t, "Bearer push-token", authHeader)
}

func TestPromSink_Listen(t *testing.T) {
	sink, err := NewPromSink(PromConfig{ListenAddr: "127.0.0.1:0"})
	require.NoError(t, err)
	defer func() { require.NoError(t, sink.Close()) }()
	require.NoError(t, sink.RecordEpoch(coremetrics.EpochEvent{Epoch: 4}))

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + sink.server.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "commute_training_epoch 4"))
}

func TestFactory_Prometheus(t *testing.T) {
	rec, err := coremetrics.NewSink(nil)
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopSink{}, rec)

	rec, err = coremetrics.NewSink([]factory.ModuleConfig{{
		Type: "prometheus",
		Conf: map[string]any{
			"push_url": "http://gateway:9091",
			"oauth2": map[string]any{
				"client_id": "trainer",
				"token_url": "http://idp/token",
				"scopes":    []string{"metrics:write"},
			},
		},
	}})
	require.NoError(t, err)
	sink, ok := rec.(*PromSink)
	require.True(t, ok)
	assert.Equal(t, "commutecarbon", sink.cfg.Job)
	assert.Equal(t, "trainer", sink.cfg.OAuth2.ClientID)
	assert.Equal(t, []string{"metrics:write"}, sink.cfg.OAuth2.Scopes)
	assert.True(t, sink.cfg.OAuth2.Enabled())
}
