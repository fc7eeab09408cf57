package services

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modeldoc/internal/logger"
	"modeldoc/internal/repositories"
)

const (
	projectModels = "/project/app/Models"
	projectEnums  = "/project/app/Enums"
)

func newGenerateFixture(t *testing.T, schema fakeSchema, files map[string]string) (afero.Fs, *GenerateService) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	log := logger.NewForTests()
	modelRepo := repositories.NewModelRepository(fs, log)
	resolver := NewTypeResolver(modelRepo, log, `App\Models`)
	properties := NewPropertyService(fs, schema, resolver, projectModels, "database column ")
	return fs, NewGenerateService(fs, log, modelRepo, properties)
}

func readFile(t *testing.T, fs afero.Fs, name string) string {
	t.Helper()
	content, err := afero.ReadFile(fs, name)
	require.NoError(t, err)
	return string(content)
}

func TestGenerateService_Run(t *testing.T) {
	options := GenerateOptions{
		ModelsDir: projectModels,
		EnumDirs:  []string{projectEnums},
		Pattern:   "**/*.php",
	}

	t.Run("Should sync every model of the project", func(t *testing.T) {
		fs, service := newGenerateFixture(t,
			fakeSchema{
				"posts": {
					{Name: "id", DataType: "int8"},
					{Name: "state", DataType: "varchar"},
					{Name: "published_at", DataType: "timestamp", Nullable: true},
				},
				"post_tags": {{Name: "tag", DataType: "text"}},
			},
			map[string]string{
				projectModels + "/Post.php": `<?php

namespace App\Models;

use App\Enums\PostState;
use Illuminate\Database\Eloquent\Model;

class Post extends Model
{
    protected $casts = [
        'state' => PostState::class,
        'published_at' => 'datetime',
    ];
}
`,
				projectModels + "/Blog/PostTag.php": `<?php

namespace App\Models\Blog;

use Illuminate\Database\Eloquent\Model;

/**
 * Tag of a post.
 */
class PostTag extends Model
{
    public $incrementing = false;
}
`,
				projectModels + "/Concerns/HasSlug.php": "<?php\n\nnamespace App\\Models\\Concerns;\n\ntrait HasSlug\n{\n}\n",
				projectEnums + "/PostState.php":          "<?php\n\nnamespace App\\Enums;\n\nenum PostState: string\n{\n    case Draft = 'draft';\n}\n",
			},
		)

		synced, err := service.Run(context.Background(), options)
		require.NoError(t, err)
		assert.Equal(t, 2, synced)

		post := readFile(t, fs, projectModels+"/Post.php")
		assert.Contains(t, post, "/**\n"+
			" * @property int $id database column id\n"+
			" * @property \\App\\Enums\\PostState $state database column state\n"+
			" * @property null|Carbon $published_at database column published_at\n"+
			" */\nclass Post extends Model\n")

		tag := readFile(t, fs, projectModels+"/Blog/PostTag.php")
		assert.Contains(t, tag, "/**\n"+
			" * @property string $tag database column tag\n"+
			" * Tag of a post.\n"+
			" */\nclass PostTag extends Model\n")
	})

	t.Run("Should stop at the first failure and keep earlier files", func(t *testing.T) {
		source := func(class string) string {
			return "<?php\n\nnamespace App\\Models;\n\nclass " + class + " extends \\Illuminate\\Database\\Eloquent\\Model\n{\n}\n"
		}
		fs, service := newGenerateFixture(t,
			fakeSchema{
				"alphas": {{Name: "name", DataType: "text"}},
				"gammas": {{Name: "name", DataType: "text"}},
			},
			map[string]string{
				projectModels + "/Alpha.php": source("Alpha"),
				projectModels + "/Beta.php":  source("Beta"),
				projectModels + "/Gamma.php": source("Gamma"),
			},
		)

		synced, err := service.Run(context.Background(), options)
		assert.ErrorIs(t, err, repositories.ErrTableNotFound)
		assert.Equal(t, 1, synced)

		assert.Contains(t, readFile(t, fs, projectModels+"/Alpha.php"), "@property string $name database column name")
		assert.Equal(t, source("Beta"), readFile(t, fs, projectModels+"/Beta.php"))
		assert.Equal(t, source("Gamma"), readFile(t, fs, projectModels+"/Gamma.php"))
	})

	t.Run("Should fail when the models directory is missing", func(t *testing.T) {
		_, service := newGenerateFixture(t, fakeSchema{}, nil)
		_, err := service.Run(context.Background(), options)
		assert.ErrorContains(t, err, "failed to scan")
	})

	t.Run("Should stop when the context is cancelled", func(t *testing.T) {
		_, service := newGenerateFixture(t, fakeSchema{}, map[string]string{
			projectModels + "/Alpha.php": "<?php\n\nnamespace App\\Models;\n\nclass Alpha extends \\Illuminate\\Database\\Eloquent\\Model\n{\n}\n",
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		synced, err := service.Run(ctx, options)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, synced)
	})
}

