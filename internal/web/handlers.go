package web

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"udhayam/internal/catalog"
	"udhayam/internal/countdown"
	"udhayam/internal/export"
	appLog "udhayam/internal/log"
	"udhayam/internal/model"
	"udhayam/internal/render"
	"udhayam/internal/timeline"
)

var errBadRequest = errors.New("bad request")

// parseSelection reads category, dept and day (default 1) from the query.
func parseSelection(r *http.Request) (timeline.Selection, error) {
	q := r.URL.Query()
	sel := timeline.Selection{
		Category:   model.Category(strings.ToLower(strings.TrimSpace(q.Get("category")))),
		Department: strings.TrimSpace(q.Get("dept")),
		Day:        parseIntDefault(q.Get("day"), 1),
	}
	if err := sel.Validate(); err != nil {
		return timeline.Selection{}, err
	}
	return sel, nil
}

// resolve looks up what a selection refers to in the active catalog.
func (s *Server) resolve(c *catalog.Catalog, sel timeline.Selection) (export.Subject, []model.Event, error) {
	subj := export.Subject{Selection: sel}
	if sel.Category == model.CategoryDepartment {
		d, err := c.Department(sel.Department)
		if err != nil {
			return subj, nil, err
		}
		subj.Department = d
	}
	events, err := c.Events(sel.Category, sel.Department)
	if err != nil {
		return subj, nil, err
	}
	return subj, events, nil
}

// view returns the layout of sel, computing it at most once per catalog
// version.
func (s *Server) view(sel timeline.Selection) (timeline.View, export.Subject, error) {
	c := s.store.Current()
	subj, events, err := s.resolve(c, sel)
	if err != nil {
		return timeline.View{}, subj, err
	}
	key := sel.Key()

	s.viewMu.RLock()
	v, ok := s.viewCache[key]
	fresh := s.viewVersion == c.Version()
	s.viewMu.RUnlock()
	if ok && fresh {
		s.metrics.RecordViewCache(true)
		return v, subj, nil
	}
	s.metrics.RecordViewCache(false)

	v = timeline.BuildView(sel, subj.Title(), events, s.policy)
	s.metrics.RecordLayout(string(sel.Category), len(v.Tracks), len(v.Rejected))
	for _, rej := range v.Rejected {
		appLog.Warn("event left out of layout", "selection", key, "id", rej.EventID, "reason", rej.Errors[0].Error())
	}

	s.viewMu.Lock()
	if s.viewVersion != c.Version() {
		s.viewCache = map[string]timeline.View{}
		s.viewVersion = c.Version()
	}
	s.viewCache[key] = v
	s.viewMu.Unlock()

	return v, subj, nil
}

func (s *Server) handleDepartments(w http.ResponseWriter, r *http.Request) {
	deps := s.store.Current().SearchDepartments(r.URL.Query().Get("q"))
	if deps == nil {
		deps = []model.Department{}
	}
	writeJSON(w, http.StatusOK, deps)
}

// scheduleResponse is the JSON shape of /api/schedule.
type scheduleResponse struct {
	timeline.View
	Department *model.Department         `json:"department,omitempty"`
	Events     []timeline.PositionedEvent `json:"events"`
	FileName   string                     `json:"fileName"`
}

// handleSchedule returns the laid-out day.
//
// GET /api/schedule?category=department&dept=cse&day=1
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	v, subj, err := s.view(sel)
	if err != nil {
		writeErr(w, err)
		return
	}
	resp := scheduleResponse{
		View:     v,
		Events:   v.Chronological(),
		FileName: subj.FileName("csv"),
	}
	if sel.Category == model.CategoryDepartment {
		resp.Department = &subj.Department
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTooltip(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		writeErr(w, fmt.Errorf("%w: id is required", errBadRequest))
		return
	}
	v, _, err := s.view(sel)
	if err != nil {
		writeErr(w, err)
		return
	}
	pe, ok := v.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, "event not on this schedule")
		return
	}
	writeJSON(w, http.StatusOK, pe.Tooltip())
}

func (s *Server) handleScheduleCSV(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	subj, events, err := s.resolve(s.store.Current(), sel)
	if err != nil {
		writeErr(w, err)
		return
	}
	s.metrics.RecordExport("csv")
	setDownload(w, export.CSVContentType, subj.FileName("csv"))
	if err := export.WriteCSV(w, export.ScheduleTable(subj, events)); err != nil {
		appLog.Error("csv export write failed", err, "selection", sel.Key())
	}
}

func (s *Server) handleScheduleICS(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	subj, events, err := s.resolve(s.store.Current(), sel)
	if err != nil {
		writeErr(w, err)
		return
	}
	body, err := export.ICS(subj, events, export.ICSOptions{
		FestStart: s.festStart,
		FestDays:  s.cfg.FestDays,
		Policy:    s.policy,
		Now:       s.now(),
	})
	if err != nil {
		writeErr(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	s.metrics.RecordExport("ics")
	setDownload(w, export.ICSContentType, subj.FileName("ics"))
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleScheduleSVG(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	v, subj, err := s.view(sel)
	if err != nil {
		writeErr(w, err)
		return
	}
	opts := render.DefaultOptions()
	if subj.Department.Color != "" {
		opts.Accent = subj.Department.Color
	}
	s.metrics.RecordExport("svg")
	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	_, _ = w.Write([]byte(render.SVG(v, opts)))
}

// handleContacts returns the coordinator directory.
//
// GET /api/contacts?category=department&dept=cse
func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cat := model.Category(strings.ToLower(strings.TrimSpace(q.Get("category"))))
	if !cat.Valid() {
		writeErr(w, fmt.Errorf("%w: %q", timeline.ErrUnknownCategory, cat))
		return
	}
	co, err := s.store.Current().Coordinators(cat, q.Get("dept"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, co)
}

type countdownResponse struct {
	FestName string             `json:"festName"`
	Opens    time.Time          `json:"opens"`
	Days     []string           `json:"days"`
	Left     countdown.TimeLeft `json:"timeLeft"`
}

func (s *Server) handleCountdown(w http.ResponseWriter, _ *http.Request) {
	days, err := countdown.FestDays(s.festStart, s.cfg.FestDays)
	if err != nil {
		writeErr(w, err)
		return
	}
	resp := countdownResponse{
		FestName: s.cfg.FestName,
		Opens:    s.festStart,
		Left:     countdown.Until(s.festStart, s.now()),
	}
	for _, d := range days {
		resp.Days = append(resp.Days, d.Format("2006-01-02"))
	}
	writeJSON(w, http.StatusOK, resp)
}

func setDownload(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
}
