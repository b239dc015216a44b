package release

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// The release workflow is plain data, so its contract is pinned here:
// which event triggers it, what it may write, which platforms it
// builds, and that its artifact glob really covers the binaries the
// build step produces.

type workflowFile struct {
	Name        string                     `yaml:"name"`
	On          map[string]workflowTrigger `yaml:"on"`
	Permissions map[string]string          `yaml:"permissions"`
	Jobs        map[string]workflowJob     `yaml:"jobs"`
}

type workflowTrigger struct {
	Types []string `yaml:"types"`
}

type workflowJob struct {
	Name     string `yaml:"name"`
	RunsOn   string `yaml:"runs-on"`
	Strategy struct {
		Matrix struct {
			OS []string `yaml:"os"`
		} `yaml:"matrix"`
	} `yaml:"strategy"`
	Steps []workflowStep `yaml:"steps"`
}

type workflowStep struct {
	Name  string         `yaml:"name"`
	Uses  string         `yaml:"uses"`
	Run   string         `yaml:"run"`
	If    string         `yaml:"if"`
	Shell string         `yaml:"shell"`
	With  map[string]any `yaml:"with"`
}

func loadReleaseWorkflow(t *testing.T) workflowFile {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", ".github", "workflows", "release.yml"))
	require.NoError(t, err, "release workflow file must exist")

	var wf workflowFile
	require.NoError(t, yaml.Unmarshal(data, &wf), "release workflow must be valid YAML")
	return wf
}

// releaseJob returns the single job the workflow defines.
func releaseJob(t *testing.T, wf workflowFile) workflowJob {
	t.Helper()
	require.Len(t, wf.Jobs, 1)
	for _, job := range wf.Jobs {
		return job
	}
	panic("unreachable")
}

func TestReleaseWorkflow_Trigger(t *testing.T) {
	wf := loadReleaseWorkflow(t)

	require.Contains(t, wf.On, "release", "workflow must run on release events")
	assert.Len(t, wf.On, 1, "no other events may trigger a release build")
	assert.Equal(t, []string{"created"}, wf.On["release"].Types)
}

func TestReleaseWorkflow_Permissions(t *testing.T) {
	wf := loadReleaseWorkflow(t)

	// Uploading assets needs contents write access and nothing more.
	assert.Equal(t, map[string]string{"contents": "write"}, wf.Permissions)
}

func TestReleaseWorkflow_Matrix(t *testing.T) {
	job := releaseJob(t, loadReleaseWorkflow(t))

	assert.Equal(t, []string{"ubuntu-latest", "windows-latest"}, job.Strategy.Matrix.OS)
	assert.Equal(t, "${{ matrix.os }}", job.RunsOn,
		"the job must run on each matrix platform")
}

func TestReleaseWorkflow_StepOrder(t *testing.T) {
	job := releaseJob(t, loadReleaseWorkflow(t))

	require.Len(t, job.Steps, 4)
	assert.True(t, strings.HasPrefix(job.Steps[0].Uses, "actions/checkout@"))
	assert.True(t, strings.HasPrefix(job.Steps[1].Uses, "actions/setup-go@"))
	assert.NotEmpty(t, job.Steps[2].Run, "third step must compile the binary")
	assert.True(t, strings.HasPrefix(job.Steps[3].Uses, "svenstaro/upload-release-action@"))
}

func TestReleaseWorkflow_ToolchainFollowsGoMod(t *testing.T) {
	job := releaseJob(t, loadReleaseWorkflow(t))

	setupGo := job.Steps[1]
	assert.Equal(t, "go.mod", setupGo.With["go-version-file"],
		"toolchain version must come from go.mod, not a hardcoded number")
}

func TestReleaseWorkflow_BuildStep(t *testing.T) {
	job := releaseJob(t, loadReleaseWorkflow(t))

	build := job.Steps[2]
	assert.Equal(t, "bash", build.Shell,
		"the build step must use bash on both matrix platforms")
	assert.Contains(t, build.Run, "go build")
	assert.Contains(t, build.Run, "-o target/release/",
		"binaries must land where the upload glob looks")
	for _, ldflag := range []string{"main.version", "main.commit", "main.date"} {
		assert.Contains(t, build.Run, ldflag)
	}
}

func TestReleaseWorkflow_UploadOnlyOnTags(t *testing.T) {
	job := releaseJob(t, loadReleaseWorkflow(t))

	for i, step := range job.Steps[:3] {
		assert.Empty(t, step.If, "step %d must not be conditional", i)
	}

	upload := job.Steps[3]
	assert.Equal(t, "startsWith(github.ref, 'refs/tags/')", upload.If,
		"assets may only be uploaded for tag refs")
	assert.Equal(t, "${{ secrets.GITHUB_TOKEN }}", upload.With["repo_token"])
	assert.Equal(t, true, upload.With["file_glob"])
	assert.Equal(t, true, upload.With["overwrite"])
}

func TestReleaseWorkflow_GlobCoversAllPlatformBinaries(t *testing.T) {
	job := releaseJob(t, loadReleaseWorkflow(t))

	glob, ok := job.Steps[3].With["file"].(string)
	require.True(t, ok, "upload step must declare a file glob")

	for _, goos := range []string{"linux", "windows"} {
		artifact := "target/release/" + BinaryName(goos)
		matched, err := path.Match(glob, artifact)
		require.NoError(t, err)
		assert.True(t, matched, "glob %q must cover %s", glob, artifact)
	}

	// The glob must not accidentally sweep up unrelated build output.
	matched, err := path.Match(glob, "target/release/other-tool")
	require.NoError(t, err)
	assert.False(t, matched)
}
