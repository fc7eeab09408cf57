package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"modeldoc/internal/logger"
	"modeldoc/internal/repositories"
	"modeldoc/internal/utils"
)

// GenerateOptions selects the files a run looks at.
type GenerateOptions struct {
	ModelsDir string
	EnumDirs  []string
	Pattern   string
}

// GenerateService runs the property sync over every model of a project, one
// model at a time in scan order.
type GenerateService struct {
	fs         afero.Fs
	log        logger.Logger
	modelRepo  *repositories.ModelRepository
	properties *PropertyService
}

func NewGenerateService(
	fs afero.Fs,
	log logger.Logger,
	modelRepo *repositories.ModelRepository,
	properties *PropertyService,
) *GenerateService {
	return &GenerateService{
		fs:         fs,
		log:        log,
		modelRepo:  modelRepo,
		properties: properties,
	}
}

// Run stops at the first failing model. Files rewritten for earlier models
// keep their new content.
func (s *GenerateService) Run(ctx context.Context, opts GenerateOptions) (int, error) {
	s.log.Info("Generating model properties")

	files, err := utils.Scan(s.fs, opts.ModelsDir)
	if err != nil {
		return 0, fmt.Errorf("failed to scan %s: %w", opts.ModelsDir, err)
	}
	if err := s.modelRepo.LoadModels(opts.ModelsDir, files, opts.Pattern); err != nil {
		return 0, err
	}
	for _, dir := range opts.EnumDirs {
		if err := s.modelRepo.LoadEnums(dir); err != nil {
			return 0, err
		}
	}

	list, err := s.modelRepo.Models()
	if err != nil {
		return 0, err
	}

	done := 0
	for _, model := range list {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		s.log.Debug("Syncing model", "model", model.FQCN, "table", model.Table, "file", filepath.Join(opts.ModelsDir, filepath.FromSlash(model.Path)))
		if err := s.properties.Sync(ctx, model); err != nil {
			return done, err
		}
		done++
	}

	s.log.Info("✅ Completed", "models", done)
	return done, nil
}
