package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Dosada05/spikezone/models"
	"github.com/Dosada05/spikezone/repositories"
	"github.com/Dosada05/spikezone/storage"
	"github.com/google/uuid"
)

// MaxImageSize — максимальный размер загружаемого изображения (5 MiB).
const MaxImageSize int64 = 5 << 20

type ImageKind string

const (
	ImageLogo   ImageKind = "logo"
	ImageBanner ImageKind = "banner"
)

type imageSpec struct {
	width, height int
}

var imageSpecs = map[ImageKind]imageSpec{
	ImageLogo:   {width: 512, height: 512},
	ImageBanner: {width: 1600, height: 500},
}

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type MediaService interface {
	UploadTeamImage(ctx context.Context, ownerUID string, kind ImageKind, contentType string, size int64, body io.Reader) (*models.Team, error)
}

type mediaService struct {
	uploader         storage.FileUploader
	teamRepo         repositories.TeamRepository
	transformBaseURL string
	logger           *slog.Logger
}

// NewMediaService создаёт сервис загрузки изображений. uploader == nil
// означает, что хранилище не настроено, и все загрузки отклоняются.
func NewMediaService(uploader storage.FileUploader, teamRepo repositories.TeamRepository, transformBaseURL string, logger *slog.Logger) MediaService {
	if logger == nil {
		logger = slog.Default()
	}
	return &mediaService{
		uploader:         uploader,
		teamRepo:         teamRepo,
		transformBaseURL: transformBaseURL,
		logger:           logger,
	}
}

func (s *mediaService) UploadTeamImage(ctx context.Context, ownerUID string, kind ImageKind, contentType string, size int64, body io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, ErrMediaUnavailable
	}

	spec, ok := imageSpecs[kind]
	if !ok {
		return nil, &ValidationError{Fields: map[string]string{"kind": "image kind must be logo or banner"}}
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, &ValidationError{Fields: map[string]string{string(kind): "allowed formats: jpg, png, webp"}}
	}
	if size > MaxImageSize {
		return nil, &ValidationError{Fields: map[string]string{string(kind): "file is too large (max 5 MB)"}}
	}

	team, err := s.teamRepo.GetByOwner(ctx, ownerUID)
	if err != nil {
		return nil, mapTeamRepoError(err, "get team")
	}

	key := fmt.Sprintf("teams/%s/%s-%s.%s", ownerUID, kind, uuid.NewString(), ext)
	res, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", kind, err)
	}
	url := storage.TransformedURL(s.transformBaseURL, res.Location, spec.width, spec.height)

	var patch TeamPatch
	var previous string
	switch kind {
	case ImageLogo:
		previous = team.LogoURL
		patch.LogoURL = &url
	case ImageBanner:
		previous = team.BannerURL
		patch.BannerURL = &url
	}

	updated, _, err := applyEdit(*team, patch)
	if err != nil {
		s.removeObject(ctx, key)
		return nil, err
	}
	if err := s.teamRepo.Update(ctx, &updated); err != nil {
		s.removeObject(ctx, key)
		return nil, mapTeamRepoError(err, "update team")
	}

	if oldKey, ok := s.uploader.KeyFromURL(previous); ok && oldKey != key {
		s.removeObject(ctx, oldKey)
	}

	s.logger.InfoContext(ctx, "team image uploaded",
		slog.Int("team_id", updated.ID), slog.String("kind", string(kind)), slog.String("key", key))
	return &updated, nil
}

// removeObject удаляет объект, ошибки только логируются.
func (s *mediaService) removeObject(ctx context.Context, key string) {
	if err := s.uploader.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete stored object", slog.String("key", key), slog.Any("error", err))
	}
}
