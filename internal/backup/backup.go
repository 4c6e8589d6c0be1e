// Package backup commits the content root to a git repository and optionally
// pushes it to a remote.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

const (
	remoteName = "origin"

	msgPushed    = "Erfolgreich in der Cloud gesichert!"
	msgCommitted = "Erfolgreich lokal gesichert."
	msgClean     = "Keine Änderungen zum Sichern."
	msgFailed    = "Fehler beim Cloud-Backup: "
)

// Config controls commit identity and the optional push target.
type Config struct {
	AuthorName  string
	AuthorEmail string
	// RemoteURL enables pushing when non-empty.
	RemoteURL string
	// Token is sent as HTTP basic-auth password when pushing.
	Token string
}

// Result is the outcome of one backup run.
type Result struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Commit    string `json:"commit,omitempty"`
}

// Service backs up one directory.
type Service struct {
	root   string
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// New creates a backup service for root.
func New(root string, cfg Config, logger *slog.Logger) *Service {
	if cfg.AuthorName == "" {
		cfg.AuthorName = "ansuz"
	}
	if cfg.AuthorEmail == "" {
		cfg.AuthorEmail = "ansuz@localhost"
	}
	return &Service{root: root, cfg: cfg, logger: logger, now: time.Now}
}

// Run stages every change under the root, commits it as
// "Auto-backup: <timestamp>" and pushes when a remote is configured. A clean
// tree is a successful no-op. On failure the returned Result carries the
// German error message alongside the error.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	res := &Result{Timestamp: now.Format(time.RFC3339)}

	hash, err := s.commit(now)
	if err != nil {
		return s.fail(res, err)
	}
	if hash == "" {
		res.Success = true
		res.Message = msgClean
		return res, nil
	}
	res.Commit = hash

	if s.cfg.RemoteURL == "" {
		res.Success = true
		res.Message = msgCommitted
		s.logger.Info("backup: committed", slog.String("commit", hash))
		return res, nil
	}
	if err := s.push(ctx); err != nil {
		return s.fail(res, err)
	}
	res.Success = true
	res.Message = msgPushed
	s.logger.Info("backup: pushed", slog.String("commit", hash), slog.String("remote", s.cfg.RemoteURL))
	return res, nil
}

func (s *Service) fail(res *Result, err error) (*Result, error) {
	res.Success = false
	res.Message = msgFailed + err.Error()
	s.logger.Error("backup: failed", slog.String("root", s.root), slog.String("error", err.Error()))
	return res, err
}

// commit returns the new commit hash, or "" when there was nothing to commit.
func (s *Service) commit(now time.Time) (string, error) {
	repo, err := s.open()
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("backup: open worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("backup: git add: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("backup: status: %w", err)
	}
	if status.IsClean() {
		return "", nil
	}
	hash, err := wt.Commit("Auto-backup: "+now.Format(time.RFC3339), &git.CommitOptions{
		Author: &object.Signature{
			Name:  s.cfg.AuthorName,
			Email: s.cfg.AuthorEmail,
			When:  now,
		},
	})
	if err != nil {
		return "", fmt.Errorf("backup: commit: %w", err)
	}
	return hash.String(), nil
}

func (s *Service) open() (*git.Repository, error) {
	repo, err := git.PlainOpen(s.root)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(s.root, false)
		if err == nil {
			s.logger.Info("backup: initialized repository", slog.String("root", s.root))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("backup: open repo: %w", err)
	}
	return repo, nil
}

func (s *Service) push(ctx context.Context) error {
	repo, err := git.PlainOpen(s.root)
	if err != nil {
		return fmt.Errorf("backup: open repo: %w", err)
	}
	if _, err := repo.Remote(remoteName); errors.Is(err, git.ErrRemoteNotFound) {
		if _, err := repo.CreateRemote(&config.RemoteConfig{
			Name: remoteName,
			URLs: []string{s.cfg.RemoteURL},
		}); err != nil {
			return fmt.Errorf("backup: create remote: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("backup: remote: %w", err)
	}

	opts := &git.PushOptions{RemoteName: remoteName}
	if s.cfg.Token != "" {
		opts.Auth = &githttp.BasicAuth{Username: "git", Password: s.cfg.Token}
	}
	err = repo.PushContext(ctx, opts)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("backup: push: %w", err)
	}
	return nil
}
