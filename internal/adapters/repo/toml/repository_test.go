package toml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/stk-connect/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, profilesPath string) *Repository {
	t.Helper()

	config := viper.New()
	config.Set("profiles.path", profilesPath)

	repo, err := NewRepository(config)
	require.NoError(t, err)

	return repo
}

func testProfile(name string) domain.Profile {
	return domain.Profile{
		Name:     domain.ProfileName(name),
		Endpoint: domain.DefaultEndpoint(),
		Launch:   domain.DefaultLaunchConfig(),
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "profiles.toml"))

	lab := testProfile("lab")
	lab.Endpoint = domain.Endpoint{Host: "stk-lab.internal", Port: 6001}
	lab.Launch.InstallDir = "/opt/stk12"
	lab.Launch.ConfigDir = "/var/lib/stk"
	lab.Launch.VendorID = "ACME"
	lab.Launch.MaxAttempts = 30
	lab.Launch.PollPeriod = 0
	lab.Launch.TerminateGrace = 10 * time.Second
	lab.Launch.StderrPath = "/var/log/stk.log"

	local := testProfile("local")

	require.NoError(t, repo.Save(context.Background(), local))
	require.NoError(t, repo.Save(context.Background(), lab))

	got, err := repo.GetByName(context.Background(), "lab")
	require.NoError(t, err)
	assert.Equal(t, lab, got)

	profiles, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Profile{lab, local}, profiles)
}

func TestRepositorySaveReplacesProfileWithSameName(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "profiles.toml"))

	profile := testProfile("local")
	require.NoError(t, repo.Save(context.Background(), profile))

	profile.Endpoint.Port = 5002
	require.NoError(t, repo.Save(context.Background(), profile))

	profiles, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, 5002, profiles[0].Endpoint.Port)
}

func TestRepositoryFillsDefaultsForSparseEntries(t *testing.T) {
	t.Parallel()

	profilesPath := filepath.Join(t.TempDir(), "profiles.toml")
	require.NoError(t, os.WriteFile(profilesPath, []byte(strings.Join([]string{
		"version = 1",
		"",
		"[[profiles]]",
		"name = \"bare\"",
		"",
		"[[profiles]]",
		"name = \"fast\"",
		"port = 7001",
		"",
		"[profiles.launch]",
		"poll_period = \"250ms\"",
		"",
	}, "\n")), 0o600))

	repo := newTestRepository(t, profilesPath)

	bare, err := repo.GetByName(context.Background(), "bare")
	require.NoError(t, err)
	assert.Equal(t, testProfile("bare"), bare)

	fast, err := repo.GetByName(context.Background(), "fast")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultHost, fast.Endpoint.Host)
	assert.Equal(t, 7001, fast.Endpoint.Port)
	assert.Equal(t, 250*time.Millisecond, fast.Launch.PollPeriod)
	assert.Equal(t, 15, fast.Launch.MaxAttempts)
}

func TestRepositoryRejectsInvalidDuration(t *testing.T) {
	t.Parallel()

	profilesPath := filepath.Join(t.TempDir(), "profiles.toml")
	require.NoError(t, os.WriteFile(profilesPath, []byte(strings.Join([]string{
		"[[profiles]]",
		"name = \"broken\"",
		"[profiles.launch]",
		"terminate_grace = \"soon\"",
		"",
	}, "\n")), 0o600))

	repo := newTestRepository(t, profilesPath)

	_, err := repo.List(context.Background())
	assert.ErrorContains(t, err, "decode profile broken terminate_grace")
}

func TestRepositoryDelete(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "profiles.toml"))
	require.NoError(t, repo.Save(context.Background(), testProfile("a")))
	require.NoError(t, repo.Save(context.Background(), testProfile("b")))

	require.NoError(t, repo.Delete(context.Background(), "a"))

	_, err := repo.GetByName(context.Background(), "a")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)

	err = repo.Delete(context.Background(), "a")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)

	profiles, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, domain.ProfileName("b"), profiles[0].Name)
}

func TestRepositorySaveRejectsInvalidProfile(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "profiles.toml"))

	profile := testProfile("bad")
	profile.Endpoint.Port = 0
	assert.ErrorContains(t, repo.Save(context.Background(), profile), "profile bad")

	_, err := os.Stat(repo.Path())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRepositorySaveCreatesDefaultPathAndEnforcesPermissions(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)

	require.NoError(t, repo.Save(context.Background(), testProfile("local")))

	profilesPath := filepath.Join(homeDir, ".stk", "profiles.toml")
	assert.Equal(t, profilesPath, repo.Path())
	info, err := os.Stat(profilesPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRepositoryReadsPathFromConfigFile(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	require.NoError(t, os.MkdirAll(filepath.Join(homeDir, ".stk"), 0o700))
	require.NoError(t, os.WriteFile(
		filepath.Join(homeDir, ".stk", "config.toml"),
		[]byte("[profiles]\npath = \"~/work/stk-profiles.toml\"\n"),
		0o600,
	))

	repo, err := NewRepository(viper.New())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "work", "stk-profiles.toml"), repo.Path())
}

func TestRepositoryMissingFileBehaviors(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "missing", "profiles.toml"))

	profiles, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, profiles)

	_, err = repo.GetByName(context.Background(), "local")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestRepositoryListMalformedTOMLReturnsError(t *testing.T) {
	t.Parallel()

	profilesPath := filepath.Join(t.TempDir(), "profiles.toml")
	require.NoError(t, os.WriteFile(profilesPath, []byte("profiles = ["), 0o600))

	repo := newTestRepository(t, profilesPath)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode profiles file")
}

func TestRepositorySaveCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "profiles.toml"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Save(ctx, testProfile("local"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRepositoryConcurrentSavesAcrossInstancesPreserveBothProfiles(t *testing.T) {
	t.Parallel()

	profilesPath := filepath.Join(t.TempDir(), "profiles.toml")

	repoA := newTestRepository(t, profilesPath)
	repoB := newTestRepository(t, profilesPath)

	const perRepoWrites = 50
	start := make(chan struct{})
	errCh := make(chan error, perRepoWrites*2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		<-start
		for i := 0; i < perRepoWrites; i++ {
			errCh <- repoA.Save(context.Background(), testProfile("a-"+strconv.Itoa(i)))
		}
	}()

	go func() {
		defer wg.Done()
		<-start
		for i := 0; i < perRepoWrites; i++ {
			errCh <- repoB.Save(context.Background(), testProfile("b-"+strconv.Itoa(i)))
		}
	}()

	close(start)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	profiles, err := repoA.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, profiles, perRepoWrites*2)
}

func TestRepositorySaveSerializedTOMLIncludesVersion(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "profiles.toml"))

	profile := testProfile("local")
	profile.Launch.PollPeriod = 500 * time.Millisecond
	require.NoError(t, repo.Save(context.Background(), profile))

	data, err := os.ReadFile(repo.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "version = 1")
	assert.Contains(t, string(data), "poll_period")
	assert.Contains(t, string(data), "500ms")
	assert.NotContains(t, string(data), "terminate_grace")
}

func TestRepositoryFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	profilesPath := filepath.Join(t.TempDir(), "profiles.toml")
	require.NoError(t, os.WriteFile(profilesPath, []byte("version = 999\n\nprofiles = []\n"), 0o600))

	repo := newTestRepository(t, profilesPath)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported profiles schema version")
}
