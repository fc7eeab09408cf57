package repositories

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
	"github.com/spf13/afero"

	"modeldoc/internal/logger"
	"modeldoc/internal/models"
	"modeldoc/internal/php"
	"modeldoc/internal/utils"
)

const (
	eloquentModel     = `Illuminate\Database\Eloquent\Model`
	authUser          = `Illuminate\Foundation\Auth\User`
	pivotModel        = `Illuminate\Database\Eloquent\Relations\Pivot`
	morphPivotModel   = `Illuminate\Database\Eloquent\Relations\MorphPivot`
	softDeletesTrait  = `Illuminate\Database\Eloquent\SoftDeletes`
	defaultPrimaryKey = "id"
	defaultKeyType    = "int"
)

type classEntry struct {
	class *php.Class
	path  string
}

// ModelRepository reads model metadata from PHP sources: which classes are
// Eloquent models, their tables, casts and timestamp columns, and which cast
// targets are enums.
type ModelRepository struct {
	fs     afero.Fs
	log    logger.Logger
	bases  map[string]bool
	order  []string
	byName map[string]classEntry
	enums  map[string]*php.Enum
}

func NewModelRepository(fs afero.Fs, log logger.Logger) *ModelRepository {
	return &ModelRepository{
		fs:  fs,
		log: log,
		bases: map[string]bool{
			eloquentModel:   true,
			authUser:        true,
			pivotModel:      true,
			morphPivotModel: true,
		},
		byName: make(map[string]classEntry),
		enums:  make(map[string]*php.Enum),
	}
}

// LoadModels parses every file of root matching pattern. files are paths
// relative to root, as returned by utils.Scan.
func (r *ModelRepository) LoadModels(root string, files []string, pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	for _, file := range files {
		ok, err := doublestar.Match(pattern, file)
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if !ok {
			continue
		}
		parsed, err := r.parse(filepath.Join(root, filepath.FromSlash(file)))
		if err != nil {
			return err
		}
		if parsed == nil {
			continue
		}
		for _, class := range parsed.Classes {
			fqcn := class.FQCN()
			if _, dup := r.byName[fqcn]; !dup {
				r.order = append(r.order, fqcn)
			}
			r.byName[fqcn] = classEntry{class: class, path: file}
		}
		r.addEnums(parsed)
	}
	return nil
}

// LoadEnums parses the PHP files below dir for enum declarations. A missing
// directory is not an error.
func (r *ModelRepository) LoadEnums(dir string) error {
	if _, err := r.fs.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	files, err := utils.Scan(r.fs, dir)
	if err != nil {
		return fmt.Errorf("failed to scan enum directory %s: %w", dir, err)
	}
	for _, file := range files {
		if !strings.HasSuffix(file, ".php") {
			continue
		}
		parsed, err := r.parse(filepath.Join(dir, filepath.FromSlash(file)))
		if err != nil {
			return err
		}
		if parsed != nil {
			r.addEnums(parsed)
		}
	}
	return nil
}

// parse returns nil for files the PHP reader cannot outline; those are
// skipped with a warning, like classes the framework cannot autoload.
func (r *ModelRepository) parse(file string) (*php.File, error) {
	src, err := afero.ReadFile(r.fs, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	parsed, err := php.ParseFile(src)
	if err != nil {
		r.log.Warn("Skipping unreadable PHP file", "file", file, "error", err)
		return nil, nil
	}
	return parsed, nil
}

func (r *ModelRepository) addEnums(file *php.File) {
	for _, enum := range file.Enums {
		r.enums[enum.FQCN()] = enum
	}
}

// IsEnum reports whether fqcn names a known enum.
func (r *ModelRepository) IsEnum(fqcn string) bool {
	_, ok := r.enums[strings.TrimPrefix(fqcn, `\`)]
	return ok
}

// Models returns the concrete Eloquent models in scan order.
func (r *ModelRepository) Models() ([]*models.Model, error) {
	var result []*models.Model
	for _, fqcn := range r.order {
		entry := r.byName[fqcn]
		if entry.class.Abstract {
			continue
		}
		chain, isModel, err := r.ancestry(entry.class)
		if err != nil {
			return nil, err
		}
		if !isModel {
			continue
		}
		result = append(result, r.buildModel(entry, chain))
	}
	return result, nil
}

// ancestry returns the class followed by its parents known to the
// repository, and whether the chain ends at an Eloquent base class.
func (r *ModelRepository) ancestry(class *php.Class) ([]*php.Class, bool, error) {
	chain := []*php.Class{class}
	seen := map[string]bool{class.FQCN(): true}
	current := class
	for current.Extends != "" {
		if r.bases[current.Extends] {
			return chain, true, nil
		}
		parent, ok := r.byName[current.Extends]
		if !ok {
			return chain, false, nil
		}
		if seen[current.Extends] {
			return nil, false, fmt.Errorf("class %s has a circular parent chain", class.FQCN())
		}
		seen[current.Extends] = true
		chain = append(chain, parent.class)
		current = parent.class
	}
	return chain, false, nil
}

func (r *ModelRepository) buildModel(entry classEntry, chain []*php.Class) *models.Model {
	class := entry.class
	root := chain[len(chain)-1]
	isPivot := root.Extends == pivotModel || root.Extends == morphPivotModel

	model := &models.Model{
		Class:           class.Name,
		Namespace:       class.Namespace,
		FQCN:            class.FQCN(),
		Path:            entry.path,
		Table:           defaultTable(class.Name, isPivot),
		CreatedAtColumn: "created_at",
		UpdatedAtColumn: "updated_at",
	}
	if v, ok := lookupProperty(chain, "table"); ok && v.Kind == php.KindString {
		model.Table = v.Str
	}
	if v, ok := lookupConstant(chain, "CREATED_AT"); ok {
		model.CreatedAtColumn = v.String()
	}
	if v, ok := lookupConstant(chain, "UPDATED_AT"); ok {
		model.UpdatedAtColumn = v.String()
	}
	model.Casts = effectiveCasts(chain)
	return model
}

// defaultTable mirrors Eloquent's naming: snake_case plural of the class
// name, singular for pivot models.
func defaultTable(class string, pivot bool) string {
	if pivot {
		return strcase.ToSnake(inflection.Singular(class))
	}
	return strcase.ToSnake(inflection.Plural(class))
}

func lookupProperty(chain []*php.Class, name string) (php.Value, bool) {
	for _, class := range chain {
		if v, ok := class.Properties[name]; ok {
			return v, true
		}
	}
	return php.Value{}, false
}

func lookupConstant(chain []*php.Class, name string) (php.Value, bool) {
	for _, class := range chain {
		if v, ok := class.Constants[name]; ok {
			return v, true
		}
	}
	return php.Value{}, false
}

// effectiveCasts merges casts the way Model::getCasts() does: the key cast of
// incrementing models first, then parent casts, then child casts, with the
// casts() method overriding the $casts property at each level.
func effectiveCasts(chain []*php.Class) map[string]string {
	casts := make(map[string]string)

	incrementing := true
	if v, ok := lookupProperty(chain, "incrementing"); ok && v.Kind == php.KindBool {
		incrementing = v.Bool
	}
	if incrementing {
		key, keyType := defaultPrimaryKey, defaultKeyType
		if v, ok := lookupProperty(chain, "primaryKey"); ok && v.Kind == php.KindString {
			key = v.Str
		}
		if v, ok := lookupProperty(chain, "keyType"); ok && v.Kind == php.KindString {
			keyType = v.Str
		}
		casts[key] = keyType
	}

	for i := len(chain) - 1; i >= 0; i-- {
		class := chain[i]
		if usesTrait(class, softDeletesTrait) {
			deletedAt := "deleted_at"
			if v, ok := lookupConstant(chain, "DELETED_AT"); ok {
				deletedAt = v.String()
			}
			if _, declared := casts[deletedAt]; !declared && deletedAt != "" {
				casts[deletedAt] = "datetime"
			}
		}
		if v, ok := class.Properties["casts"]; ok && v.Kind == php.KindArray {
			for column, cast := range v.StringMap() {
				casts[column] = cast
			}
		}
		if class.CastsMethod != nil {
			for column, cast := range class.CastsMethod.StringMap() {
				casts[column] = cast
			}
		}
	}
	return casts
}

func usesTrait(class *php.Class, trait string) bool {
	return utils.Contains(class.Traits, trait)
}
