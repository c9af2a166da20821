package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/evcraddock/client-visits/internal/auth"
	"github.com/evcraddock/client-visits/internal/blob"
	"github.com/evcraddock/client-visits/internal/client"
	"github.com/evcraddock/client-visits/internal/export"
	"github.com/evcraddock/client-visits/internal/visit"
)

// errNotLoggedIn is returned when a command needs a user and none is configured.
var errNotLoggedIn = errors.New("not logged in (run 'cv login')")

// visitService is what the commands need from either the local store or
// a remote server.
type visitService interface {
	User() auth.User
	List(ctx context.Context, opts client.ListOptions) ([]visit.ClientVisit, error)
	Get(ctx context.Context, id string) (visit.ClientVisit, error)
	Create(ctx context.Context, form visit.Form, status visit.Status) (visit.ClientVisit, error)
	Update(ctx context.Context, id string, patch visit.Patch) (visit.ClientVisit, error)
	Submit(ctx context.Context, id string) (visit.ClientVisit, error)
	Summary(ctx context.Context, opts client.ListOptions, recent int) (visit.Summary, error)
	Export(ctx context.Context, opts client.ListOptions, w io.Writer) error
	Close() error
}

// openService connects to the configured server, or opens the local store
// when no server is configured.
func openService(ctx context.Context) (visitService, error) {
	email, password := getCredentials()
	if email == "" {
		return nil, errNotLoggedIn
	}

	if serverURL := getServerURL(); serverURL != "" {
		c := client.New(serverURL, email, password)
		me, err := c.Me(ctx)
		if err != nil {
			return nil, fmt.Errorf("connecting to %s: %w", serverURL, err)
		}
		return &remoteService{client: c, user: me.User}, nil
	}

	user, err := auth.DemoDirectory().Authenticate(email, password)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'cv login')", err)
	}
	return openLocalService(ctx, *user)
}

// localService works directly on the configured blob store.
type localService struct {
	user  auth.User
	view  *visit.View
	close func() error
}

func openLocalService(ctx context.Context, user auth.User) (*localService, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, err
	}

	blobs, closeFn, err := blob.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Driver, err)
	}

	store, err := visit.Open(ctx, blobs, visit.WithLogger(slog.Default()))
	if err != nil {
		if cerr := closeFn(); cerr != nil {
			slog.Warn("closing storage", "error", cerr)
		}
		return nil, err
	}

	return &localService{
		user:  user,
		view:  store.View(user.ID, cfg.Scoping),
		close: closeFn,
	}, nil
}

func (s *localService) User() auth.User { return s.user }

func (s *localService) list(opts client.ListOptions) ([]visit.ClientVisit, error) {
	filter, err := visit.ParseStatusFilter(opts.Status)
	if err != nil {
		return nil, err
	}
	owner := s.user.ID
	if opts.All {
		owner = ""
	}
	return visit.FilterStatus(s.view.List(owner), filter), nil
}

func (s *localService) List(_ context.Context, opts client.ListOptions) ([]visit.ClientVisit, error) {
	return s.list(opts)
}

func (s *localService) Get(_ context.Context, id string) (visit.ClientVisit, error) {
	v, ok := s.view.Get(id)
	if !ok {
		return visit.ClientVisit{}, fmt.Errorf("%w: %s", visit.ErrNotFound, id)
	}
	return v, nil
}

func (s *localService) Create(ctx context.Context, form visit.Form, status visit.Status) (visit.ClientVisit, error) {
	draft, err := form.Draft(s.user.ID, s.user.Name, status)
	if err != nil {
		return visit.ClientVisit{}, err
	}
	return s.view.Create(ctx, draft)
}

func (s *localService) Update(ctx context.Context, id string, patch visit.Patch) (visit.ClientVisit, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return visit.ClientVisit{}, err
	}
	if patch.TouchesContent() {
		if err := visit.FormOf(patch.ApplyTo(current)).Validate(); err != nil {
			return visit.ClientVisit{}, err
		}
	}
	if err := s.view.Update(ctx, id, patch); err != nil {
		return visit.ClientVisit{}, err
	}
	return s.Get(ctx, id)
}

func (s *localService) Submit(ctx context.Context, id string) (visit.ClientVisit, error) {
	if err := s.view.MarkSubmitted(ctx, id); err != nil {
		return visit.ClientVisit{}, err
	}
	return s.Get(ctx, id)
}

func (s *localService) Summary(_ context.Context, opts client.ListOptions, recent int) (visit.Summary, error) {
	visits, err := s.list(opts)
	if err != nil {
		return visit.Summary{}, err
	}
	return visit.Summarize(visits, recent), nil
}

func (s *localService) Export(_ context.Context, opts client.ListOptions, w io.Writer) error {
	visits, err := s.list(opts)
	if err != nil {
		return err
	}
	return export.WriteXLSX(w, visits)
}

func (s *localService) Close() error {
	return s.close()
}

// remoteService forwards to the API server.
type remoteService struct {
	client *client.Client
	user   auth.User
}

func (s *remoteService) User() auth.User { return s.user }

func (s *remoteService) List(ctx context.Context, opts client.ListOptions) ([]visit.ClientVisit, error) {
	return s.client.ListVisits(ctx, opts)
}

func (s *remoteService) Get(ctx context.Context, id string) (visit.ClientVisit, error) {
	return deref(s.client.GetVisit(ctx, id))
}

func (s *remoteService) Create(ctx context.Context, form visit.Form, status visit.Status) (visit.ClientVisit, error) {
	return deref(s.client.CreateVisit(ctx, form, status))
}

func (s *remoteService) Update(ctx context.Context, id string, patch visit.Patch) (visit.ClientVisit, error) {
	return deref(s.client.UpdateVisit(ctx, id, patch))
}

func (s *remoteService) Submit(ctx context.Context, id string) (visit.ClientVisit, error) {
	return deref(s.client.SubmitVisit(ctx, id))
}

func (s *remoteService) Summary(ctx context.Context, opts client.ListOptions, recent int) (visit.Summary, error) {
	sum, err := s.client.Summary(ctx, opts, recent)
	if err != nil {
		return visit.Summary{}, err
	}
	return *sum, nil
}

func (s *remoteService) Export(ctx context.Context, opts client.ListOptions, w io.Writer) error {
	return s.client.Export(ctx, opts, w)
}

func (s *remoteService) Close() error { return nil }

func deref(v *visit.ClientVisit, err error) (visit.ClientVisit, error) {
	if err != nil {
		return visit.ClientVisit{}, err
	}
	return *v, nil
}

// closeService closes svc, logging any error to stderr.
func closeService(svc visitService) {
	if err := svc.Close(); err != nil {
		slog.Warn("closing storage", "error", err)
	}
}
