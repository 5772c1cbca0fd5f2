package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rawblock/rainbow-engine/internal/attack"
	"github.com/rawblock/rainbow-engine/internal/hashes"
	"github.com/rawblock/rainbow-engine/internal/pipeline"
	"github.com/rawblock/rainbow-engine/internal/store"
	"github.com/rawblock/rainbow-engine/internal/tableparams"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Job is the observable state of one submitted generate or attack run.
type Job struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Status     Status          `json:"status"`
	Params     json.RawMessage `json:"params"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt,omitempty"`
}

// GenerateRequest configures one or more table generation runs.
type GenerateRequest struct {
	Hash              string   `json:"hash"`
	Alphabet          string   `json:"alphabet"`
	MaxLen            uint8    `json:"maxLen"`
	ChainLen          uint64   `json:"chainLen"`
	M0                uint64   `json:"m0"`
	FiltrationColumns []uint64 `json:"filtrationColumns,omitempty"`
	OutputDir         string   `json:"outputDir"`
	TableCount        int      `json:"tableCount"`
	Concurrency       int      `json:"concurrency,omitempty"`
}

// AttackRequest attacks a single digest against every table file in
// TablesDir.
type AttackRequest struct {
	Hash      string `json:"hash"`
	DigestHex string `json:"digestHex"`
	TablesDir string `json:"tablesDir"`
}

// Manager tracks in-flight and completed jobs and optionally persists
// their outcome to a HistoryStore. Safe for concurrent use.
type Manager struct {
	hub     *Hub
	history *HistoryStore // nil if DATABASE_URL is unset

	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewManager(hub *Hub, history *HistoryStore) *Manager {
	return &Manager{hub: hub, history: history, jobs: make(map[string]*Job)}
}

func (m *Manager) Get(id string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	return j, ok
}

func (m *Manager) put(j *Job) {
	m.mu.Lock()
	m.jobs[j.ID] = j
	m.mu.Unlock()
}

func (m *Manager) finish(j *Job, status Status, result any, runErr error) {
	m.mu.Lock()
	j.Status = status
	j.FinishedAt = time.Now()
	if runErr != nil {
		j.Error = runErr.Error()
	}
	if result != nil {
		if b, err := json.Marshal(result); err == nil {
			j.Result = b
		}
	}
	m.mu.Unlock()

	if m.history != nil {
		resStatus := "succeeded"
		if status == StatusFailed {
			resStatus = "failed"
		}
		if err := m.history.RecordFinish(context.Background(), j.ID, resStatus, j.Result, j.FinishedAt); err != nil {
			log.Printf("[service] failed to record job history: %v", err)
		}
	}
	m.broadcastStatus(j)
}

func (m *Manager) broadcastStatus(j *Job) {
	if m.hub == nil {
		return
	}
	if b, err := json.Marshal(j); err == nil {
		m.hub.Broadcast(b)
	}
}

// SubmitGenerate starts a generation run in the background and returns
// its job id immediately.
func (m *Manager) SubmitGenerate(req GenerateRequest) (string, error) {
	hashKind, err := parseHashName(req.Hash)
	if err != nil {
		return "", err
	}
	if req.TableCount <= 0 {
		req.TableCount = 1
	}

	paramsJSON, _ := json.Marshal(req)
	id := uuid.NewString()
	job := &Job{ID: id, Kind: "generate", Status: StatusRunning, Params: paramsJSON, StartedAt: time.Now()}
	m.put(job)

	if m.history != nil {
		if err := m.history.RecordStart(context.Background(), id, "generate", paramsJSON, job.StartedAt); err != nil {
			log.Printf("[service] failed to record job start: %v", err)
		}
	}

	go m.runGenerate(job, hashKind, req)
	return id, nil
}

func (m *Manager) runGenerate(job *Job, hashKind hashes.Kind, req GenerateRequest) {
	configs := make([]pipeline.Config, req.TableCount)
	for i := 0; i < req.TableCount; i++ {
		p, err := tableparams.New(hashKind, []byte(req.Alphabet), req.MaxLen, req.M0, req.ChainLen, uint32(i))
		if err != nil {
			m.finish(job, StatusFailed, nil, err)
			return
		}
		configs[i] = pipeline.Config{Params: p, FiltrationColumns: req.FiltrationColumns}
	}

	tables, err := pipeline.GenerateTables(context.Background(), configs, req.Concurrency)
	if err != nil {
		m.finish(job, StatusFailed, nil, err)
		return
	}

	paths := make([]string, len(tables))
	for i, tbl := range tables {
		path := filepath.Join(req.OutputDir, fmt.Sprintf("table-%04d.rtc", tbl.Params.TableID))
		if err := store.Write(path, tbl.Params, tbl.Chains); err != nil {
			m.finish(job, StatusFailed, nil, err)
			return
		}
		paths[i] = path
	}

	m.finish(job, StatusSucceeded, map[string]any{"tableFiles": paths}, nil)
}

// SubmitAttack starts an attack run in the background and returns its
// job id immediately.
func (m *Manager) SubmitAttack(req AttackRequest) (string, error) {
	hashKind, err := parseHashName(req.Hash)
	if err != nil {
		return "", err
	}
	digest, err := hex.DecodeString(req.DigestHex)
	if err != nil {
		return "", fmt.Errorf("invalid digest hex: %w", err)
	}

	paramsJSON, _ := json.Marshal(req)
	id := uuid.NewString()
	job := &Job{ID: id, Kind: "attack", Status: StatusRunning, Params: paramsJSON, StartedAt: time.Now()}
	m.put(job)

	if m.history != nil {
		if err := m.history.RecordStart(context.Background(), id, "attack", paramsJSON, job.StartedAt); err != nil {
			log.Printf("[service] failed to record job start: %v", err)
		}
	}

	go m.runAttack(job, hashKind, digest, req.TablesDir)
	return id, nil
}

func (m *Manager) runAttack(job *Job, hashKind hashes.Kind, digest []byte, tablesDir string) {
	paths, err := filepath.Glob(filepath.Join(tablesDir, "*.rtc"))
	if err != nil {
		m.finish(job, StatusFailed, nil, err)
		return
	}
	if len(paths) == 0 {
		m.finish(job, StatusFailed, nil, fmt.Errorf("no table files found in %s", tablesDir))
		return
	}

	tables := make([]*attack.Table, 0, len(paths))
	defer func() {
		for _, t := range tables {
			t.Close()
		}
	}()
	for _, p := range paths {
		t, err := attack.Open(p)
		if err != nil {
			m.finish(job, StatusFailed, nil, err)
			return
		}
		tables = append(tables, t)
	}

	progress := make(chan attack.Progress, 16)
	go func() {
		for p := range progress {
			if b, err := json.Marshal(p); err == nil && m.hub != nil {
				m.hub.Broadcast(b)
			}
		}
	}()

	res, err := attack.Run(context.Background(), attack.Config{
		Hash: hashKind, Digest: digest, Tables: tables, Progress: progress,
	})
	close(progress)
	if err != nil {
		m.finish(job, StatusFailed, nil, err)
		return
	}

	if !res.Found {
		m.finish(job, StatusSucceeded, map[string]any{"found": false}, nil)
		return
	}
	m.finish(job, StatusSucceeded, map[string]any{"found": true, "plaintext": string(res.Plaintext)}, nil)
}

func parseHashName(name string) (hashes.Kind, error) {
	switch name {
	case "MD4":
		return hashes.MD4, nil
	case "MD5":
		return hashes.MD5, nil
	case "NTLM":
		return hashes.NTLM, nil
	case "SHA1":
		return hashes.SHA1, nil
	case "SHA2_256":
		return hashes.SHA2_256, nil
	case "SHA3_256":
		return hashes.SHA3_256, nil
	default:
		return 0, fmt.Errorf("unknown hash kind %q", name)
	}
}
