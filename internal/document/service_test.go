package document

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"tome/internal/indexer"
	"tome/internal/objstore"
	"tome/internal/platform/metrics"
	id "tome/pkg/domain"
	dErrors "tome/pkg/domainerrors"
	"tome/pkg/requestcontext"
	"tome/pkg/testutil"
)

type queueSpy struct {
	mu    sync.Mutex
	tasks []indexer.Task
}

func (q *queueSpy) Enqueue(task indexer.Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
}

type fakePresigner struct {
	err error
}

func (p *fakePresigner) PresignDownload(_ context.Context, key string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return "https://files.example.com/" + key + "?signature=abc", nil
}

type ServiceSuite struct {
	suite.Suite
	scoper    *testutil.ScoperSpy
	store     *InMemoryStore
	queue     *queueSpy
	presigner *fakePresigner
	service   *Service
	uploader  id.UserID
}

func (s *ServiceSuite) SetupTest() {
	s.scoper = &testutil.ScoperSpy{}
	s.store = NewInMemoryStore()
	s.queue = &queueSpy{}
	s.presigner = &fakePresigner{}
	s.service = NewService(s.scoper, s.store, s.presigner, s.queue, metrics.NewNop(), slog.Default())
	s.uploader = id.NewUserID()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) authed() context.Context {
	return requestcontext.WithUserID(context.Background(), s.uploader)
}

func (s *ServiceSuite) create(req CreateRequest) *Document {
	doc, err := s.service.Create(s.authed(), req)
	s.Require().NoError(err)
	return doc
}

func (s *ServiceSuite) TestCreate() {
	s.Run("creates document and queues indexing", func() {
		s.SetupTest()
		doc := s.create(CreateRequest{
			WorkspaceID: id.NewWorkspaceID(),
			Title:       "  Meeting notes  ",
			Content:     "decisions and actions",
		})

		s.Equal("Meeting notes", doc.Title)
		s.Equal(s.uploader, doc.UploaderID)
		s.Empty(doc.FileURL)
		s.Equal(1, s.scoper.CurrentUserCalls)
		s.Require().Len(s.queue.tasks, 1)
		s.Equal(doc.ID, s.queue.tasks[0].DocumentID)
		s.Equal(s.uploader, s.queue.tasks[0].UploaderID)
	})

	s.Run("derives a valid storage key for uploads", func() {
		s.SetupTest()
		doc := s.create(CreateRequest{
			WorkspaceID: id.NewWorkspaceID(),
			Title:       "Quarterly report",
			Filename:    "report.pdf",
		})

		key, ok := objstore.ExtractKey(doc.FileURL)
		s.True(ok)
		s.Equal(doc.FileURL, key)
	})

	s.Run("rejects missing title or workspace", func() {
		s.SetupTest()
		_, err := s.service.Create(s.authed(), CreateRequest{WorkspaceID: id.NewWorkspaceID()})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		_, err = s.service.Create(s.authed(), CreateRequest{Title: "no workspace"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.Empty(s.queue.tasks)
	})

	s.Run("fails without ambient identity", func() {
		s.SetupTest()
		_, err := s.service.Create(context.Background(), CreateRequest{
			WorkspaceID: id.NewWorkspaceID(),
			Title:       "anonymous",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestGetAndDelete() {
	s.Run("round trips a document", func() {
		s.SetupTest()
		created := s.create(CreateRequest{WorkspaceID: id.NewWorkspaceID(), Title: "keep"})

		got, err := s.service.Get(s.authed(), created.ID)
		s.Require().NoError(err)
		s.Equal(created.ID, got.ID)

		s.Require().NoError(s.service.Delete(s.authed(), created.ID))
		_, err = s.service.Get(s.authed(), created.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("missing document maps to not found", func() {
		s.SetupTest()
		_, err := s.service.Get(s.authed(), id.NewDocumentID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		err = s.service.Delete(s.authed(), id.NewDocumentID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestList() {
	s.Run("lists documents of one workspace", func() {
		s.SetupTest()
		wsID := id.NewWorkspaceID()
		s.create(CreateRequest{WorkspaceID: wsID, Title: "one"})
		s.create(CreateRequest{WorkspaceID: wsID, Title: "two"})
		s.create(CreateRequest{WorkspaceID: id.NewWorkspaceID(), Title: "elsewhere"})

		docs, err := s.service.List(s.authed(), wsID)
		s.Require().NoError(err)
		s.Len(docs, 2)
	})
}

func (s *ServiceSuite) TestDownloadURL() {
	s.Run("signs a valid stored key", func() {
		s.SetupTest()
		doc := s.create(CreateRequest{
			WorkspaceID: id.NewWorkspaceID(),
			Title:       "Report",
			Filename:    "report.pdf",
		})

		url, err := s.service.DownloadURL(s.authed(), doc.ID)
		s.Require().NoError(err)
		s.Contains(url, doc.FileURL)
		s.Contains(url, "signature=")
	})

	s.Run("document without a file yields empty url and no error", func() {
		s.SetupTest()
		doc := s.create(CreateRequest{WorkspaceID: id.NewWorkspaceID(), Title: "text only"})

		url, err := s.service.DownloadURL(s.authed(), doc.ID)
		s.Require().NoError(err)
		s.Empty(url)
	})

	s.Run("corrupted stored key yields empty url and no error", func() {
		s.SetupTest()
		doc := &Document{
			ID:          id.NewDocumentID(),
			WorkspaceID: id.NewWorkspaceID(),
			UploaderID:  s.uploader,
			Title:       "tampered",
			FileURL:     "../../etc/passwd",
		}
		s.Require().NoError(s.store.Create(context.Background(), doc))

		url, err := s.service.DownloadURL(s.authed(), doc.ID)
		s.Require().NoError(err)
		s.Empty(url)
	})

	s.Run("presign failure surfaces as an error", func() {
		s.SetupTest()
		s.presigner.err = fmt.Errorf("s3 unavailable")
		doc := s.create(CreateRequest{
			WorkspaceID: id.NewWorkspaceID(),
			Title:       "Report",
			Filename:    "report.pdf",
		})

		_, err := s.service.DownloadURL(s.authed(), doc.ID)
		s.Error(err)
	})
}
