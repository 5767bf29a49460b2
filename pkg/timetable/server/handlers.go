package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ukaji3/timetable-go/pkg/timetable/branch"
	"github.com/ukaji3/timetable-go/pkg/timetable/models"
	"github.com/ukaji3/timetable-go/pkg/timetable/nlq"
	"github.com/ukaji3/timetable-go/pkg/timetable/output"
	"github.com/ukaji3/timetable-go/pkg/timetable/query"
	"github.com/ukaji3/timetable-go/pkg/timetable/store"
)

// httpError carries a status code with the error shown to the client.
type httpError struct {
	status int
	err    error
}

func (e *httpError) Error() string { return e.err.Error() }
func (e *httpError) Unwrap() error { return e.err }

func notFound(format string, args ...any) error {
	return &httpError{status: http.StatusNotFound, err: fmt.Errorf(format, args...)}
}

func badRequest(err error) error {
	return &httpError{status: http.StatusBadRequest, err: err}
}

// statusOf maps an error to an HTTP status.
func statusOf(err error) int {
	var he *httpError
	switch {
	case errors.As(err, &he):
		return he.status
	case errors.Is(err, query.ErrUnknownColumn):
		return http.StatusBadRequest
	case errors.Is(err, query.ErrUnknownTable), errors.Is(err, sql.ErrNoRows), errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"err", err,
			"request_id", middleware.GetReqID(r.Context()),
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type datasetInfo struct {
	Dataset branch.Dataset `json:"dataset"`
	Table   string         `json:"table,omitempty"`
	// Available is false for datasets the branch does not have.
	Available bool `json:"available"`
}

type branchInfo struct {
	Name     string        `json:"name"`
	Datasets []datasetInfo `json:"datasets"`
}

func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	out := make([]branchInfo, 0, len(s.branches.Branches))
	for _, name := range s.branches.Names() {
		b, _ := s.branches.Get(name)
		info := branchInfo{Name: name}
		for _, ds := range branch.Datasets() {
			di := datasetInfo{Dataset: ds}
			if t := b.Target(ds); t != nil {
				di.Table = t.Table
				di.Available = true
			}
			info.Datasets = append(info.Datasets, di)
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")
	b, ok := s.rooms.BranchOf(room)
	if !ok {
		s.writeError(w, r, notFound("room %q not found", room))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"room": room, "branch": b})
}

// openDataset opens the store of the {branch}/{dataset} in the route.
func (s *Server) openDataset(r *http.Request) (*store.Store, *branch.Target, error) {
	name := chi.URLParam(r, "branch")
	b, ok := s.branches.Get(name)
	if !ok {
		return nil, nil, notFound("branch %q not found", name)
	}
	ds, err := branch.ParseDataset(chi.URLParam(r, "dataset"))
	if err != nil {
		return nil, nil, notFound("%v", err)
	}
	target := b.Target(ds)
	if target == nil {
		return nil, nil, notFound("branch %s has no %s dataset", b.Name, ds)
	}
	st, err := store.Open(target.Store, s.storeOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s/%s store: %w", b.Name, ds, err)
	}
	return st, target, nil
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	st, target, err := s.openDataset(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer st.Close()

	cols, err := st.Columns(r.Context(), target.Table)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}

func (s *Server) handleDistinct(w http.ResponseWriter, r *http.Request) {
	st, target, err := s.openDataset(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer st.Close()

	values, err := query.Distinct(r.Context(), st, target.Table, chi.URLParam(r, "column"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if split, _ := strconv.ParseBool(r.URL.Query().Get("split")); split {
		values = query.SplitList(values)
	}
	writeJSON(w, http.StatusOK, values)
}

// reserved query parameters of the rows endpoint.
const (
	paramSelect = "select"
	paramOrder  = "order"
	paramLimit  = "limit"
	paramFormat = "format"
	likePrefix  = "like."
)

// rowsRequest turns query parameters into a lookup: col=v filters by
// equality, like.col=v by substring, select and order take comma lists.
func rowsRequest(table string, params map[string][]string) (query.Request, error) {
	req := query.Request{Table: table}
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		values := params[key]
		switch {
		case key == paramFormat:
		case key == paramSelect:
			req.Select = query.Columns(splitComma(values)...)
		case key == paramOrder:
			req.OrderBy = splitComma(values)
		case key == paramLimit:
			n, err := strconv.Atoi(values[0])
			if err != nil || n < 0 {
				return req, badRequest(fmt.Errorf("invalid limit %q", values[0]))
			}
			req.Limit = n
		case strings.HasPrefix(key, likePrefix):
			for _, v := range values {
				req.Contains = append(req.Contains, query.Filter{Column: strings.TrimPrefix(key, likePrefix), Value: v})
			}
		default:
			if len(values) > 1 {
				req.In = append(req.In, query.InFilter{Column: key, Values: values})
				continue
			}
			req.Eq = append(req.Eq, query.Filter{Column: key, Value: values[0]})
		}
	}
	return req, nil
}

func splitComma(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	st, target, err := s.openDataset(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer st.Close()

	req, err := rowsRequest(target.Table, r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := query.Lookup(r.Context(), st, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTable(w, r, t)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	st, target, err := s.openDataset(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer st.Close()

	filters, err := rowsRequest(target.Table, r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req := query.ScheduleRequest{
		Table: target.Table,
		Day:   chi.URLParam(r, "day"),
		Keep:  []string{"room", "strength"},
		Eq:    filters.Eq,
		In:    filters.In,
	}

	t, err := query.Schedule(r.Context(), st, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTable(w, r, t)
}

func (s *Server) writeTable(w http.ResponseWriter, r *http.Request, t *models.Table) {
	if r.URL.Query().Get(paramFormat) != "csv" {
		writeJSON(w, http.StatusOK, t)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", t.Name+".csv"))
	if err := output.WriteCSV(w, t); err != nil {
		s.log.Error("write csv", "err", err, "request_id", middleware.GetReqID(r.Context()))
	}
}

type askRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.translator == nil {
		s.writeError(w, r, &httpError{status: http.StatusServiceUnavailable, err: errors.New("question translation is not configured")})
		return
	}

	var body askRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		s.writeError(w, r, badRequest(fmt.Errorf("invalid body: %w", err)))
		return
	}
	if strings.TrimSpace(body.Question) == "" {
		s.writeError(w, r, badRequest(errors.New("question is required")))
		return
	}

	st, target, err := s.openDataset(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer st.Close()

	ans, err := nlq.Ask(r.Context(), s.translator, st, target.Table, body.Question)
	if err != nil {
		// The generated SQL is returned so the caller can see what failed.
		if ans != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error(), "sql": ans.SQL})
			return
		}
		if statusOf(err) == http.StatusInternalServerError {
			err = &httpError{status: http.StatusBadGateway, err: err}
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ans)
}
