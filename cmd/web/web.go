package web

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"flatdb/database"
	"flatdb/dberror"
	"flatdb/executor"
	"flatdb/parser"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	SQL string `json:"sql"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// App serves statements over HTTP. Requests are executed one at a time.
type App struct {
	mu   sync.Mutex
	exec *executor.Executor
	sess *database.Session
	log  logrus.FieldLogger
}

func New(session *database.Session, exec *executor.Executor, log logrus.FieldLogger) *App {
	return &App{sess: session, exec: exec, log: log}
}

// Handler returns the routes of the API:
//
//	POST /query          {"sql": "..."} runs one statement
//	GET  /tables         lists the tables of the current database
//	GET  /tables/{name}  returns rows; ?where=Age>21&order=Age desc
func (app *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /query", app.handleQuery)
	mux.HandleFunc("GET /tables", app.handleTables)
	mux.HandleFunc("GET /tables/{name}", app.handleRows)
	return mux
}

func (app *App) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SQL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON"})
		return
	}

	app.mu.Lock()
	out, err := app.exec.Run(req.SQL)
	app.mu.Unlock()
	if err != nil {
		app.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (app *App) handleTables(w http.ResponseWriter, r *http.Request) {
	app.mu.Lock()
	defer app.mu.Unlock()

	db, err := app.sess.Current()
	if err != nil {
		app.fail(w, err)
		return
	}
	names, err := db.Tables()
	if err != nil {
		app.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": names})
}

func (app *App) handleRows(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("name")
	var (
		where database.Where
		order []database.SortKey
		err   error
	)
	if q := r.URL.Query().Get("where"); q != "" {
		if where, err = parser.ParseWhere(q); err != nil {
			app.fail(w, err)
			return
		}
	}
	if q := r.URL.Query().Get("order"); q != "" {
		if order, err = parser.ParseOrderBy(q); err != nil {
			app.fail(w, err)
			return
		}
	}

	app.mu.Lock()
	defer app.mu.Unlock()

	db, err := app.sess.Current()
	if err != nil {
		app.fail(w, err)
		return
	}
	var res *database.Result
	if len(order) > 0 {
		res, err = db.OrderBy(table, order, nil, where)
	} else {
		res, err = db.Select(table, nil, where)
	}
	if err != nil {
		app.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (app *App) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		app.log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch kind := dberror.KindOf(err); {
	case errors.Is(kind, dberror.ErrPermission):
		return http.StatusForbidden
	case errors.Is(kind, dberror.ErrSchemaNotFound), errors.Is(kind, dberror.ErrDatabaseNotFound):
		return http.StatusNotFound
	case errors.Is(kind, dberror.ErrConstraintViolation), errors.Is(kind, dberror.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(kind, dberror.ErrIO), kind == nil:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RunServer serves the API on addr until the listener fails.
func RunServer(app *App, addr string) error {
	app.log.WithField("addr", addr).Info("statement API listening")
	if err := http.ListenAndServe(addr, app.Handler()); err != nil {
		return fmt.Errorf("error starting server: %w", err)
	}
	return nil
}
