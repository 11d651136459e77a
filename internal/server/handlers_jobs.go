package server

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/job-aggregator/internal/grouping"
	"github.com/jonathan/job-aggregator/internal/paginate"
	"github.com/jonathan/job-aggregator/internal/types"
)

// maxPageSize caps client-requested page sizes.
const maxPageSize = 100

// handleListJobs serves the grouped, filtered, cursor-paginated job list.
//
// Query parameters:
//
//	cursor    resume token from a previous page
//	page_size grouped rows per page (default 20, max 100)
//	companies comma-separated company names to filter on
//	q         full-text query over title, company, and locations
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if query := strings.TrimSpace(q.Get("q")); query != "" {
		s.handleSearchJobs(w, r, query)
		return
	}

	pageSize := paginate.DefaultPageSize
	if raw := q.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.errorResponse(w, http.StatusBadRequest, "page_size must be a positive integer")
			return
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		pageSize = n
	}

	var companies []string
	if raw := q.Get("companies"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				companies = append(companies, name)
			}
		}
	}

	aliases, err := s.store.LoadAliases(r.Context())
	if err != nil {
		log.Printf("Error loading aliases: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to load company aliases")
		return
	}

	engine := paginate.NewEngine(s.store)
	page, err := engine.Next(r.Context(), paginate.Request{
		Cursor:    q.Get("cursor"),
		PageSize:  pageSize,
		Companies: companies,
		Aliases:   aliases,
	})
	if err != nil {
		if strings.Contains(err.Error(), "malformed cursor") {
			s.errorResponse(w, http.StatusBadRequest, "malformed cursor")
			return
		}
		log.Printf("Error paginating jobs: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	jobs := page.Jobs
	if jobs == nil {
		jobs = []*types.GroupedJob{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":        jobs,
		"next_cursor": page.NextCursor,
		"done":        page.Done,
	})
}

// handleSearchJobs serves the text-search variant of the job list. Search
// results are grouped but not cursor-paginated; the query itself narrows
// the set.
func (s *Server) handleSearchJobs(w http.ResponseWriter, r *http.Request, query string) {
	postings, err := s.store.SearchPostings(r.Context(), query, maxPageSize)
	if err != nil {
		log.Printf("Error searching jobs: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to search jobs")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs": groupSorted(postings),
		"done": true,
	})
}

// handleGetJob serves one posting with its detail merged in.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid job ID")
		return
	}

	job, err := s.store.GetPostingWithDetail(r.Context(), id)
	if err != nil {
		log.Printf("Error getting job %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "job not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, job)
}

// handleListCompanies serves the company rollups.
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.ListSummaries(r.Context())
	if err != nil {
		log.Printf("Error listing companies: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to list companies")
		return
	}
	if summaries == nil {
		summaries = []*types.CompanySummary{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"companies": summaries})
}

// groupSorted groups postings and orders the rows for display.
func groupSorted(postings []*types.JobPosting) []*types.GroupedJob {
	groups := grouping.Group(postings)
	rows := make([]*types.JobPosting, len(groups))
	byRow := make(map[*types.JobPosting]*types.GroupedJob, len(groups))
	for i, g := range groups {
		rows[i] = &g.JobPosting
		byRow[&g.JobPosting] = g
	}
	types.SortForDisplay(rows)
	for i, row := range rows {
		groups[i] = byRow[row]
	}
	if groups == nil {
		groups = []*types.GroupedJob{}
	}
	return groups
}
