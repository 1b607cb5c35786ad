package platform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Options configures platform initialization.
type Options struct {
	Endpoint string
	Token    string
	Logger   *slog.Logger
}

// Platform holds process-wide platform state: the API client, the endpoint
// and the authenticated automation identity used for author-matching.
type Platform struct {
	client   APIClient
	endpoint string
	token    string
	user     *User
	logger   *slog.Logger
}

// InitPlatform authenticates against the remote platform and records the
// automation identity. It is a one-time step preceding any InitRepo call and
// fails with ErrAuthentication when credentials are absent or rejected.
func InitPlatform(ctx context.Context, client APIClient, opts Options) (*Platform, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("%w: no token configured", ErrAuthentication)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	user, err := client.GetUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	if version, err := client.GetVersion(ctx); err != nil {
		logger.Debug("could not determine platform version", "error", err)
	} else {
		logger.Debug("platform detected", "endpoint", opts.Endpoint, "version", version)
	}
	logger.Info("authenticated", "user", user.Login)

	return &Platform{
		client:   client,
		endpoint: opts.Endpoint,
		token:    opts.Token,
		user:     user,
		logger:   logger,
	}, nil
}

// User returns the authenticated automation identity.
func (p *Platform) User() *User {
	return p.user
}

// GetRepos discovers repositories belonging to an owner, skipping archived
// and mirrored ones.
func (p *Platform) GetRepos(ctx context.Context, owner string) ([]string, error) {
	repos, err := p.client.SearchRepos(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("searching repositories for %s: %w", owner, err)
	}
	names := make([]string, 0, len(repos))
	for _, r := range repos {
		if r.Archived || r.Mirror {
			continue
		}
		names = append(names, r.FullName)
	}
	return names, nil
}

// RepoOptions configures repository session initialization.
type RepoOptions struct {
	CloneSubmodules bool

	// Git, when set, is used to initialize a local clone and later to
	// resolve branch commits for status signaling.
	Git GitClient
}

// Session is the per-repository reconciliation context: target repository,
// chosen merge method, default branch and the three list caches. Sessions are
// values owned by the caller; creating a new one abandons any prior session.
type Session struct {
	platform *Platform
	client   APIClient
	logger   *slog.Logger
	git      GitClient

	repo            string
	owner           string
	defaultBranch   string
	mergeMethod     MergeMethod
	cloneSubmodules bool

	prCache    *listCache[*Pr]
	issueCache *listCache[*Issue]
	labelCache *listCache[*Label]

	statusMu sync.Mutex
	statuses map[string]*CombinedStatus
}

// InitRepo fetches repository metadata, validates usability and establishes
// a fresh session with all caches unpopulated. Archived, mirrored and empty
// repositories, and ones the automation lacks pull+push permission on, fail
// with their distinct sentinel conditions; a repository permitting no merge
// method fails with ErrNoMergeMethod.
func (p *Platform) InitRepo(ctx context.Context, repo string, opts RepoOptions) (*Session, error) {
	r, err := p.client.GetRepo(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("initializing repository %s: %w", repo, err)
	}

	switch {
	case r.Archived:
		return nil, fmt.Errorf("%s: %w", repo, ErrRepoArchived)
	case r.Mirror:
		return nil, fmt.Errorf("%s: %w", repo, ErrRepoMirrored)
	case r.Empty:
		return nil, fmt.Errorf("%s: %w", repo, ErrRepoEmpty)
	case !r.Permissions.Pull || !r.Permissions.Push:
		return nil, fmt.Errorf("%s: %w", repo, ErrRepoForbidden)
	}

	method, ok := preferredMergeMethod(r.MergeMethods)
	if !ok {
		return nil, fmt.Errorf("%s: %w", repo, ErrNoMergeMethod)
	}

	owner, _, _ := strings.Cut(repo, "/")
	s := &Session{
		platform:        p,
		client:          p.client,
		logger:          p.logger.With("repository", repo),
		git:             opts.Git,
		repo:            repo,
		owner:           owner,
		defaultBranch:   r.DefaultBranch,
		mergeMethod:     method,
		cloneSubmodules: opts.CloneSubmodules,
		prCache:         newListCache[*Pr](),
		issueCache:      newListCache[*Issue](),
		labelCache:      newListCache[*Label](),
		statuses:        make(map[string]*CombinedStatus),
	}
	s.logger.Debug("repository session established",
		"mergeMethod", method, "defaultBranch", r.DefaultBranch)

	if opts.Git != nil {
		if err := opts.Git.InitClone(p.cloneURL(r), opts.CloneSubmodules); err != nil {
			return nil, fmt.Errorf("initializing clone of %s: %w", repo, err)
		}
	}
	return s, nil
}

// cloneURL embeds the platform credentials into the repository clone URL.
func (p *Platform) cloneURL(r *Repo) string {
	url := r.CloneURL
	if rest, ok := strings.CutPrefix(url, "https://"); ok {
		url = "https://" + p.user.Login + ":" + p.token + "@" + rest
	}
	return url
}

// Repo returns the owner/name identifier of the session repository.
func (s *Session) Repo() string {
	return s.repo
}

// DefaultBranch returns the repository default branch recorded at session
// initialization.
func (s *Session) DefaultBranch() string {
	return s.defaultBranch
}

// MergeMethod returns the merge method chosen for this repository.
func (s *Session) MergeMethod() MergeMethod {
	return s.mergeMethod
}

// GetRepoForceRebase reports whether the remote forces a rebase before merge.
// Rebase-forcing is unsupported, so this is always false.
func (s *Session) GetRepoForceRebase() (bool, error) {
	return false, nil
}

// GetVulnerabilityAlerts returns the repository's security alerts. Alert
// retrieval is unsupported, so the set is always empty.
func (s *Session) GetVulnerabilityAlerts(_ context.Context) ([]VulnerabilityAlert, error) {
	s.logger.Debug("vulnerability alerts are unsupported, returning none")
	return nil, nil
}
