package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qazaq-teachers/internal/dto"
)

type stubMirror struct {
	url   string
	err   error
	names []string
}

func (m *stubMirror) Mirror(_ context.Context, name string, _ []byte) (string, error) {
	m.names = append(m.names, name)
	if m.err != nil {
		return "", m.err
	}
	return m.url, nil
}

func TestMaterialServiceUploadMirrorsWhenConfigured(t *testing.T) {
	f := newPortalFixture(t)
	teacher := f.teacher(t, "mat", "Mat")
	mirror := &stubMirror{url: "https://res.cloudinary.test/map.png"}
	svc := NewMaterialService(f.materials, f.classes, mirror, f.validate, 1024, f.logger)
	ctx := context.Background()

	uploaded, err := svc.Upload(ctx, teacher.ID, dto.MaterialUploadRequest{Category: " Geography "}, &dto.FileUpload{
		Name:        "map.png",
		ContentType: "image/png",
		Data:        []byte("png"),
	})
	require.NoError(t, err)
	require.Equal(t, "map.png", uploaded.FileName)
	require.Equal(t, "Geography", uploaded.Category)
	require.Equal(t, int64(3), uploaded.FileSize)
	require.Equal(t, "https://res.cloudinary.test/map.png", uploaded.PublicURL)
	require.Equal(t, []string{"map.png"}, mirror.names)

	list, err := svc.List(ctx, teacher.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "https://res.cloudinary.test/map.png", list[0].PublicURL)
}

func TestMaterialServiceMirrorFailureStillStores(t *testing.T) {
	f := newPortalFixture(t)
	teacher := f.teacher(t, "mat", "Mat")
	svc := NewMaterialService(f.materials, f.classes, &stubMirror{err: errors.New("offline")}, f.validate, 1024, f.logger)

	uploaded, err := svc.Upload(context.Background(), teacher.ID, dto.MaterialUploadRequest{FileName: "Poster"}, &dto.FileUpload{
		ContentType: "image/jpeg",
		Data:        []byte("jpeg"),
	})
	require.NoError(t, err)
	require.Equal(t, "Poster", uploaded.FileName)
	require.Empty(t, uploaded.PublicURL)

	_, err = svc.Upload(context.Background(), teacher.ID, dto.MaterialUploadRequest{}, nil)
	require.ErrorIs(t, err, ErrFileNotFound)

	_, err = svc.Upload(context.Background(), teacher.ID, dto.MaterialUploadRequest{}, &dto.FileUpload{Data: make([]byte, 4096)})
	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestMaterialServiceClassAccess(t *testing.T) {
	f := newPortalFixture(t)
	teacher := f.teacher(t, "owner", "Owner")
	other := f.teacher(t, "other", "Other")
	class := f.class(t, teacher.ID, "5A")
	foreignClass := f.class(t, other.ID, "5B")
	svc := NewMaterialService(f.materials, f.classes, nil, f.validate, 1024, f.logger)
	ctx := context.Background()

	uploaded, err := svc.Upload(ctx, teacher.ID, dto.MaterialUploadRequest{}, &dto.FileUpload{Name: "chart.svg", ContentType: "image/svg+xml", Data: []byte("<svg/>")})
	require.NoError(t, err)

	forClass, err := svc.ListForClass(ctx, class.ID)
	require.NoError(t, err)
	require.Len(t, forClass, 1)

	forForeign, err := svc.ListForClass(ctx, foreignClass.ID)
	require.NoError(t, err)
	require.Empty(t, forForeign)

	download, err := svc.File(ctx, MaterialAccess{ClassID: class.ID}, uploaded.ID)
	require.NoError(t, err)
	require.Equal(t, "chart.svg", download.Name)
	require.Equal(t, "image/svg+xml", download.ContentType)

	_, err = svc.File(ctx, MaterialAccess{ClassID: foreignClass.ID}, uploaded.ID)
	require.ErrorIs(t, err, ErrMaterialNotFound)

	_, err = svc.File(ctx, MaterialAccess{TeacherID: other.ID}, uploaded.ID)
	require.ErrorIs(t, err, ErrMaterialNotFound)

	require.ErrorIs(t, svc.Delete(ctx, other.ID, uploaded.ID), ErrMaterialNotFound)
	require.NoError(t, svc.Delete(ctx, teacher.ID, uploaded.ID))
	require.ErrorIs(t, svc.Delete(ctx, teacher.ID, uploaded.ID), ErrMaterialNotFound)
}
