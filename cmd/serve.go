package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jsphweid/taikoshift/logger"
	"github.com/jsphweid/taikoshift/model"
	"github.com/jsphweid/taikoshift/pipeline"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

// Charts larger than this are refused.
const maxChartBytes = 16 << 20

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves conversion over HTTP",
	Long: `Serves POST /convert and POST /inspect on TAIKOSHIFT_LISTEN_ADDR. Both take
{"chart": "<.osu text>"} plus optional mode, lazer_safe, constant_speed and sva.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           cors.Default().Handler(NewRouter()),
			ReadHeaderTimeout: 10 * time.Second,
		}
		logger.Info("listening", logger.String("addr", cfg.ListenAddr))
		return srv.ListenAndServe()
	},
}

func NewRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/convert", HandleConvert).Methods("POST")
	router.HandleFunc("/inspect", HandleInspect).Methods("POST")
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods("GET")
	return router
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("writing response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func readRequest(r *http.Request) (model.ConvertRequest, pipeline.Options, error) {
	var input model.ConvertRequest
	reqBody, err := io.ReadAll(io.LimitReader(r.Body, maxChartBytes+1))
	if err != nil {
		return input, pipeline.Options{}, fmt.Errorf("reading request body: %w", err)
	}
	if len(reqBody) > maxChartBytes {
		return input, pipeline.Options{}, errors.New("request body too large")
	}
	if err := json.Unmarshal(reqBody, &input); err != nil {
		return input, pipeline.Options{}, fmt.Errorf("could not unmarshal request body: %w", err)
	}
	if input.Chart == "" {
		return input, pipeline.Options{}, errors.New("chart is required")
	}

	opts, err := pipeline.FromConfig(cfg)
	if err != nil {
		return input, opts, err
	}
	if input.Mode != "" {
		if opts.OutputMode, err = pipeline.ParseOutputMode(input.Mode); err != nil {
			return input, opts, err
		}
	}
	opts.LazerSafe = opts.LazerSafe || input.LazerSafe
	opts.ConstantSpeed = input.ConstantSpeed
	opts.Sva = input.Sva && input.ConstantSpeed
	opts.Strict = true
	return input, opts, nil
}

// HandleConvert answers POST /convert with the converted chart.
func HandleConvert(w http.ResponseWriter, r *http.Request) {
	input, opts, err := readRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := pipeline.Run(input.Chart, opts)
	switch {
	case errors.Is(err, pipeline.ErrNotStandard), errors.Is(err, pipeline.ErrNoHitObjects):
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		logger.Error("conversion failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	name := ""
	if title := r.URL.Query().Get("name"); title != "" {
		name = pipeline.OutputFileName(title, opts.ConstantSpeed, res.SvaApplied)
	}
	writeJSON(w, http.StatusOK, res.Response(name))
}

// HandleInspect answers POST /inspect without converting.
func HandleInspect(w http.ResponseWriter, r *http.Request) {
	input, opts, err := readRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, pipeline.Inspect(input.Chart, opts).Response())
}
