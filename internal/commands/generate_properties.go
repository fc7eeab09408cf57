package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"modeldoc/internal/config"
	"modeldoc/internal/database"
	"modeldoc/internal/logger"
	"modeldoc/internal/repositories"
	"modeldoc/internal/services"
)

func GeneratePropertiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "model:generate:properties",
		Aliases: []string{"generate", "properties"},
		Short:   "Generate properties for all models",
		Args:    cobra.NoArgs,
		RunE:    runGenerateProperties,
	}

	cmd.Flags().String("models-dir", "", "Models directory relative to --path (default "+config.DefaultModelsDir+")")
	cmd.Flags().String("namespace", "", "Namespace of the models directory (default "+config.DefaultNamespace+")")
	cmd.Flags().String("pattern", config.DefaultPattern, "Glob selecting model files inside the models directory")
	cmd.Flags().StringSlice("enum-dir", config.DefaultEnumDirs, "Directories, relative to --path, searched for enums")
	cmd.Flags().Bool("dry-run", false, "Print the generated doc comments instead of writing them")

	return cmd
}

func runGenerateProperties(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	projectDir, _ := flags.GetString("path")
	logLevel, _ := flags.GetString("log-level")
	logJSON, _ := flags.GetBool("log-json")

	logger.Init(&logger.Config{
		Level:  logger.LogLevel(logLevel),
		Output: os.Stderr,
		JSON:   logJSON,
	})
	log := logger.GetDefault()

	cfg, err := config.Load(projectDir)
	if err != nil {
		return err
	}
	if flags.Changed("models-dir") {
		cfg.ModelsDir, _ = flags.GetString("models-dir")
	}
	if flags.Changed("namespace") {
		cfg.Namespace, _ = flags.GetString("namespace")
	}
	cfg.Pattern, _ = flags.GetString("pattern")
	cfg.EnumDirs, _ = flags.GetStringSlice("enum-dir")
	cfg.DryRun, _ = flags.GetBool("dry-run")
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	conn, err := database.Connect(ctx, cfg.DB, cfg.SQLitePath())
	if err != nil {
		return err
	}
	defer conn.Close()

	schemaRepo, err := repositories.NewSchemaRepository(conn)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	modelRepo := repositories.NewModelRepository(fs, log)
	resolver := services.NewTypeResolver(modelRepo, log, cfg.Namespace)
	properties := services.NewPropertyService(fs, schemaRepo, resolver, cfg.ModelsPath(), cfg.MarkerPrefix)
	if cfg.DryRun {
		properties.DryRun = cmd.OutOrStdout()
	}

	enumDirs := make([]string, 0, len(cfg.EnumDirs))
	for _, dir := range cfg.EnumDirs {
		enumDirs = append(enumDirs, filepath.Join(cfg.ProjectDir, dir))
	}

	generate := services.NewGenerateService(fs, log, modelRepo, properties)
	if _, err := generate.Run(ctx, services.GenerateOptions{
		ModelsDir: cfg.ModelsPath(),
		EnumDirs:  enumDirs,
		Pattern:   cfg.Pattern,
	}); err != nil {
		return fmt.Errorf("generate properties: %w", err)
	}
	return nil
}
