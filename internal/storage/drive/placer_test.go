package drive

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicoop/convenios-backend/config"
)

type move struct {
	kind     Kind
	id       string
	folderID string
}

type fakeMover struct {
	moves   []move
	uploads []UploadRequest
	err     error
}

func (f *fakeMover) MoveFile(ctx context.Context, id, folderID string) error {
	f.moves = append(f.moves, move{KindFile, id, folderID})
	return f.err
}

func (f *fakeMover) MoveFolder(ctx context.Context, id, folderID string) error {
	f.moves = append(f.moves, move{KindFolder, id, folderID})
	return f.err
}

func (f *fakeMover) Upload(ctx context.Context, req UploadRequest) (*UploadedFile, error) {
	f.uploads = append(f.uploads, req)
	return &UploadedFile{ID: "new-file", Name: req.Name, WebViewLink: FileURL("new-file")}, nil
}

type fakeFactory struct {
	mover *fakeMover
	err   error
	actor string
}

func (f *fakeFactory) ForActor(ctx context.Context, actorID string) (Mover, error) {
	f.actor = actorID
	if f.err != nil {
		return nil, f.err
	}
	return f.mover, nil
}

func testDriveConfig() config.DriveConfig {
	return config.DriveConfig{
		PendingFolderID:  "f-pending",
		ApprovedFolderID: "f-approved",
		RejectedFolderID: "f-rejected",
		ArchivedFolderID: "f-archived",
		FolderTypeSlug:   "practicas-preprofesionales",
	}
}

func TestPlacer_PlaceFileByType(t *testing.T) {
	mover := &fakeMover{}
	p := NewPlacer(&fakeFactory{mover: mover}, testDriveConfig())

	err := p.Place(context.Background(), Placement{
		ActorID:  "admin-1",
		FileURL:  "https://drive.google.com/file/d/1FileId12345/view",
		TypeSlug: "convenio-marco",
		Folder:   "approved",
	})
	require.NoError(t, err)
	require.Len(t, mover.moves, 1)
	assert.Equal(t, move{KindFile, "1FileId12345", "f-approved"}, mover.moves[0])
}

func TestPlacer_FolderTypeWinsOverURLShape(t *testing.T) {
	mover := &fakeMover{}
	p := NewPlacer(&fakeFactory{mover: mover}, testDriveConfig())

	// stored as a file link, but this agreement type is folder based
	err := p.Place(context.Background(), Placement{
		FileURL:  "https://drive.google.com/file/d/1FolderId123/view",
		TypeSlug: "practicas-preprofesionales",
		Folder:   "rejected",
	})
	require.NoError(t, err)
	assert.Equal(t, move{KindFolder, "1FolderId123", "f-rejected"}, mover.moves[0])
}

func TestPlacer_Errors(t *testing.T) {
	mover := &fakeMover{}
	cfg := testDriveConfig()
	cfg.ArchivedFolderID = ""
	p := NewPlacer(&fakeFactory{mover: mover}, cfg)
	ctx := context.Background()

	err := p.Place(ctx, Placement{FileURL: "", Folder: "approved"})
	assert.ErrorIs(t, err, ErrNoStoredItem)

	err = p.Place(ctx, Placement{FileURL: "1FileId12345", Folder: "archived"})
	assert.ErrorIs(t, err, ErrFolderNotConfigured)

	p = NewPlacer(&fakeFactory{err: ErrNotLinked}, testDriveConfig())
	err = p.Place(ctx, Placement{FileURL: "1FileId12345", Folder: "pending"})
	assert.ErrorIs(t, err, ErrNotLinked)

	mover.err = errors.New("drive down")
	p = NewPlacer(&fakeFactory{mover: mover}, testDriveConfig())
	err = p.Place(ctx, Placement{FileURL: "1FileId12345", Folder: "pending"})
	assert.EqualError(t, err, "drive down")
	assert.Empty(t, mover.uploads)
}

func TestPlacer_Upload(t *testing.T) {
	mover := &fakeMover{}
	factory := &fakeFactory{mover: mover}
	p := NewPlacer(factory, testDriveConfig())

	f, err := p.Upload(context.Background(), "admin-1", "pending", UploadRequest{
		Name:    "convenio.docx",
		Content: strings.NewReader("bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "new-file", f.ID)
	assert.Equal(t, "admin-1", factory.actor)
	assert.Equal(t, "f-pending", mover.uploads[0].FolderID)
}

func TestPlacer_StoreGenerated(t *testing.T) {
	ctx := context.Background()
	req := UploadRequest{Name: "convenio.docx", Content: strings.NewReader("doc")}

	t.Run("file type goes to bucket and becomes pointer", func(t *testing.T) {
		mover := &fakeMover{}
		p := NewPlacer(&fakeFactory{mover: mover}, testDriveConfig())

		got, err := p.StoreGenerated(ctx, Generated{ActorID: "a", TypeSlug: "convenio-marco", Folder: "approved", Request: req})
		require.NoError(t, err)
		assert.Equal(t, "f-approved", mover.uploads[0].FolderID)
		assert.Equal(t, FileURL("new-file"), got.Pointer)
	})

	t.Run("folder type uploads inside its folder", func(t *testing.T) {
		mover := &fakeMover{}
		p := NewPlacer(&fakeFactory{mover: mover}, testDriveConfig())

		got, err := p.StoreGenerated(ctx, Generated{
			ActorID:    "a",
			TypeSlug:   "practicas-preprofesionales",
			Folder:     "pending",
			CurrentURL: "https://drive.google.com/drive/folders/FOLDERabcdef123",
			Request:    req,
		})
		require.NoError(t, err)
		assert.Equal(t, "FOLDERabcdef123", mover.uploads[0].FolderID)
		assert.Empty(t, got.Pointer)
		assert.Equal(t, "new-file", got.File.ID)
	})

	t.Run("folder type without folder never points at a file", func(t *testing.T) {
		mover := &fakeMover{}
		p := NewPlacer(&fakeFactory{mover: mover}, testDriveConfig())

		got, err := p.StoreGenerated(ctx, Generated{
			ActorID:    "a",
			TypeSlug:   "practicas-preprofesionales",
			Folder:     "pending",
			CurrentURL: "https://drive.google.com/file/d/1FileId12345/view",
			Request:    req,
		})
		require.NoError(t, err)
		assert.Equal(t, "f-pending", mover.uploads[0].FolderID)
		assert.Empty(t, got.Pointer)
	})

	t.Run("unlinked account", func(t *testing.T) {
		p := NewPlacer(&fakeFactory{err: ErrNotLinked}, testDriveConfig())
		_, err := p.StoreGenerated(ctx, Generated{TypeSlug: "practicas-preprofesionales", CurrentURL: "https://drive.google.com/drive/folders/FOLDERabcdef123", Request: req})
		assert.ErrorIs(t, err, ErrNotLinked)
	})
}
