// Package httpapi realizes SPEC_FULL.md §4.8's HTTP/WebSocket boundary
// around the core combat/lcars/montecarlo/optimizer packages, grounded on
// the teacher's cmd/server/main.go (http.NewServeMux, Go 1.22 method+path
// patterns, graceful shutdown) and internal/handlers/mechs.go's
// handler-struct-with-dependencies shape.
package httpapi

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/JustinWhittecar/kobayashi/internal/combat"
	"github.com/JustinWhittecar/kobayashi/internal/lcars"
	"github.com/JustinWhittecar/kobayashi/internal/montecarlo"
	"github.com/JustinWhittecar/kobayashi/internal/optimizer"
	"github.com/JustinWhittecar/kobayashi/internal/store"
)

// jobRegistry is the in-memory table of running/finished optimize jobs a
// single server process owns, keyed by Job.ID. Durable persistence (across
// restarts) is internal/store's concern; this registry is what
// GET/DELETE /api/optimize/jobs/{id} and the progress socket read from.
type jobRegistry struct {
	mu   sync.RWMutex
	byID map[string]*optimizer.Job
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{byID: make(map[string]*optimizer.Job)}
}

func (r *jobRegistry) put(j *optimizer.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[j.ID] = j
}

func (r *jobRegistry) get(id string) (*optimizer.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.byID[id]
	return j, ok
}

// Server holds every handler's shared dependencies. Its only database
// handle is the optional job store, which it writes to and never reads;
// catalogue lookups are the caller's responsibility (SPEC_FULL.md's core
// packages take stats and crews, not ids); Server only orchestrates
// compile -> simulate/optimize -> respond.
type Server struct {
	jobs     *jobRegistry
	hub      *jobHub
	jobStore *sql.DB
}

// NewServer wires a Server with no durable job persistence; jobs live only
// in the in-memory registry for the process's lifetime.
func NewServer() *Server {
	return &Server{jobs: newJobRegistry(), hub: newJobHub()}
}

// NewServerWithJobStore additionally persists each job's terminal result to
// jobStore (opened via internal/store.ConnectJobStore). GET
// /api/optimize/jobs/{id} still answers from the in-memory registry only,
// so a job from before a process restart is reported as not found.
func NewServerWithJobStore(jobStore *sql.DB) *Server {
	return &Server{jobs: newJobRegistry(), hub: newJobHub(), jobStore: jobStore}
}

// Routes registers every SPEC_FULL.md §4.8 endpoint on mux, following
// cmd/server/main.go's flat mux.HandleFunc("METHOD /path", handler) style.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /api/simulate", s.handleSimulate)
	mux.HandleFunc("POST /api/monte-carlo", s.handleMonteCarlo)
	mux.HandleFunc("POST /api/optimize", s.handleOptimizeSync)
	mux.HandleFunc("POST /api/optimize/jobs", s.handleOptimizeAsync)
	mux.HandleFunc("GET /api/optimize/jobs/{id}", s.handleJobStatus)
	mux.HandleFunc("DELETE /api/optimize/jobs/{id}", s.handleJobCancel)
	mux.HandleFunc("GET /ws/optimize/jobs/{id}", s.serveJobProgress)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	http.Error(w, msg, status)
}

// fightRequest is the shared attacker/defender/crew shape POST /api/simulate
// and POST /api/monte-carlo both decode.
type fightRequest struct {
	Attacker      combat.DefenderStats `json:"attacker"`
	Defender      combat.DefenderStats `json:"defender"`
	AttackerCrew  *lcars.Crew          `json:"attacker_crew"`
	DefenderCrew  *lcars.Crew          `json:"defender_crew"`
	Profile       lcars.Profile        `json:"profile"`
	Seed          uint64               `json:"seed"`
	SampleCount   uint64               `json:"sample_count"`
	Workers       int                  `json:"workers"`
}

func compileSide(crew *lcars.Crew, base lcars.StatSource, profile lcars.Profile) (*lcars.BuffSet, error) {
	if crew == nil {
		return &lcars.BuffSet{}, nil
	}
	return lcars.Compile(crew, base, profile, lcars.CompileOptions{})
}

// handleSimulate runs a single deterministic fight and returns its full
// FightOutcome, including the round-by-round trace (spec.md §4.2's
// external-interface contract for a single fight).
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req fightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	attackerBuffs, err := compileSide(req.AttackerCrew, lcars.StatSource(req.Attacker.ToStatSource()), req.Profile)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "compile attacker crew: "+err.Error())
		return
	}
	defenderBuffs, err := compileSide(req.DefenderCrew, lcars.StatSource(req.Defender.ToStatSource()), lcars.Profile{})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "compile defender crew: "+err.Error())
		return
	}

	var trace combat.Trace
	outcome := combat.Simulate(req.Attacker, req.Defender, attackerBuffs, defenderBuffs, req.Seed, &trace)
	writeJSON(w, http.StatusOK, outcome)
}

// handleMonteCarlo runs Options.N seeded fights for the given scenario and
// returns the reduced AggregateStats (spec.md §4.3's external contract).
func (s *Server) handleMonteCarlo(w http.ResponseWriter, r *http.Request) {
	var req fightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SampleCount == 0 {
		writeError(w, http.StatusBadRequest, "sample_count must be > 0")
		return
	}

	attackerBuffs, err := compileSide(req.AttackerCrew, lcars.StatSource(req.Attacker.ToStatSource()), req.Profile)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "compile attacker crew: "+err.Error())
		return
	}
	defenderBuffs, err := compileSide(req.DefenderCrew, lcars.StatSource(req.Defender.ToStatSource()), lcars.Profile{})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "compile defender crew: "+err.Error())
		return
	}

	stats := montecarlo.RunMonteCarlo(montecarlo.Scenario{
		Attacker:      req.Attacker,
		Defender:      req.Defender,
		AttackerBuffs: attackerBuffs,
		DefenderBuffs: defenderBuffs,
	}, montecarlo.Options{N: req.SampleCount, BaseSeed: req.Seed, Workers: req.Workers})

	writeJSON(w, http.StatusOK, stats)
}

// optimizeRequest is the shared body POST /api/optimize (synchronous) and
// POST /api/optimize/jobs (async) both decode.
type optimizeRequest struct {
	Ship            combat.DefenderStats       `json:"ship"`
	Hostile         combat.DefenderStats       `json:"hostile"`
	Profile         lcars.Profile              `json:"profile"`
	Roster          []optimizer.RosterOfficer  `json:"roster"`
	BelowDecksSlots int                        `json:"below_decks_slots"`
	BelowDecksMode  optimizer.BelowDecksMode   `json:"below_decks_mode"`
	HeuristicSeeds  []optimizer.HeuristicSeed  `json:"heuristic_seeds"`
	MaxCandidates   int                        `json:"max_candidates"`
	Strategy        optimizer.Strategy         `json:"strategy"`
	Genetic         optimizer.GeneticOptions   `json:"genetic"`
	Metric          optimizer.PrimaryMetric    `json:"metric"`
	TopK            int                        `json:"top_k"`
	SampleCount     uint64                     `json:"sample_count"`
	BaseSeed        uint64                     `json:"base_seed"`
	Workers         int                        `json:"workers"`
	WallClockBudget time.Duration              `json:"wall_clock_budget_ns"`
}

func (req optimizeRequest) strategy() optimizer.Strategy {
	if req.Strategy == "" {
		return optimizer.StrategyExhaustive
	}
	return req.Strategy
}

func (req optimizeRequest) runOptions() optimizer.RunOptions {
	return optimizer.RunOptions{
		Strategy: req.strategy(),
		Generate: optimizer.GenerateOptions{
			Roster:          req.Roster,
			BelowDecksSlots: req.BelowDecksSlots,
			BelowDecksMode:  req.BelowDecksMode,
			HeuristicSeeds:  req.HeuristicSeeds,
			MaxCandidates:   req.MaxCandidates,
		},
		Score: optimizer.ScoreOptions{
			Ship:            req.Ship,
			ShipStatSource:  lcars.StatSource(req.Ship.ToStatSource()),
			Hostile:         req.Hostile,
			Profile:         req.Profile,
			SimulationCount: req.SampleCount,
			BaseSeed:        req.BaseSeed,
			Workers:         req.Workers,
		},
		Genetic: req.Genetic,
		Metric:  req.Metric,
		TopK:    req.TopK,
	}
}

// handleOptimizeSync runs opts.Strategy's candidate search to completion
// and returns the ranked top-K in one response, for search spaces small
// enough to finish inside an HTTP request's lifetime.
func (s *Server) handleOptimizeSync(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Roster) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "roster must name at least one officer")
		return
	}

	ranked, err := optimizer.RunWithProgress(req.runOptions(), nil)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "optimize: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}

// handleOptimizeAsync queues the scenario as a Job and returns its id
// immediately; progress is polled via GET .../jobs/{id} or streamed over
// the WebSocket route.
func (s *Server) handleOptimizeAsync(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Roster) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "roster must name at least one officer")
		return
	}

	job := optimizer.NewJob()
	if s.jobStore != nil {
		job.OnComplete = func(status optimizer.JobStatus) {
			resultJSON, err := json.Marshal(status.Result)
			if err != nil {
				log.Printf("[httpapi] marshal job %s result: %v", status.ID, err)
				return
			}
			if err := store.SaveJobResult(s.jobStore, status.ID, string(status.State), resultJSON, status.Err); err != nil {
				log.Printf("[httpapi] persist job %s: %v", status.ID, err)
			}
		}
	}
	s.jobs.put(job)
	go job.Run(req.runOptions(), req.WallClockBudget)

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

// jobStatusResponse is the wire shape for GET /api/optimize/jobs/{id}.
// Generation/MaxGeneration read 0/0 for a StrategyExhaustive job.
type jobStatusResponse struct {
	ID            string                      `json:"id"`
	State         optimizer.JobState          `json:"state"`
	Done          int64                       `json:"done"`
	Total         int64                       `json:"total"`
	Generation    int64                       `json:"generation,omitempty"`
	MaxGeneration int64                       `json:"max_generation,omitempty"`
	Partial       bool                        `json:"partial"`
	Error         string                      `json:"error,omitempty"`
	Result        []optimizer.ScoredCandidate `json:"result,omitempty"`
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobs.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	status := job.Status()
	resp := jobStatusResponse{
		ID: status.ID, State: status.State, Done: status.Done, Total: status.Total,
		Generation: status.Generation, MaxGeneration: status.MaxGeneration,
		Partial: status.Partial, Result: status.Result,
	}
	if status.Err != nil {
		resp.Error = status.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleJobCancel(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobs.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	job.Cancel()
	w.WriteHeader(http.StatusAccepted)
}
