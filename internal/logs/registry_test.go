package logs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/gleicon/rwlog/internal/testutils"
)

// RegistryTestSuite exercises the registry against a scratch directory
type RegistryTestSuite struct {
	suite.Suite
	testConfig  *testutils.TestConfig
	defaultPath string
	registry    *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (s *RegistryTestSuite) SetupTest() {
	s.testConfig = testutils.NewTestConfig(s.T())
	s.defaultPath = s.testConfig.LogPath("default.log")
	s.registry = NewRegistry(s.defaultPath)
}

func (s *RegistryTestSuite) TestProtectedEntriesExistFromStart() {
	s.Equal(2, s.registry.Count())
	s.Equal([]string{ConsolePath, s.defaultPath}, s.registry.Paths())
	s.Equal(s.defaultPath, s.registry.DefaultPath())
}

func (s *RegistryTestSuite) TestConsoleIsShared() {
	console := s.registry.Console()

	s.Same(console, s.registry.Console())
	s.Same(console, s.registry.File(ConsolePath, OverflowRotate))
	s.True(console.IsReflectToConsole())
	s.Equal(OverflowNone, console.OverflowAction())
	s.Equal(ConsolePath, console.Path())
}

func (s *RegistryTestSuite) TestDefaultIsShared() {
	def := s.registry.Default(OverflowRotate)

	s.Same(def, s.registry.Default(OverflowNone))
	s.Same(def, s.registry.File(s.defaultPath, OverflowNone))
	s.Equal(s.defaultPath, def.Path())
	// Created eagerly with the truncate policy
	s.Equal(OverflowTruncate, def.OverflowAction())
}

func (s *RegistryTestSuite) TestFileReturnsSameInstance() {
	path := s.testConfig.LogPath("app.log")

	first := s.registry.File(path, OverflowTruncate)
	second := s.registry.File(path, OverflowRotate)

	s.Same(first, second)
	s.Equal(OverflowTruncate, second.OverflowAction())
	s.Equal(3, s.registry.Count())
}

func (s *RegistryTestSuite) TestDestroyProtected() {
	s.True(errors.Is(s.registry.Destroy(ConsolePath), ErrBadArguments))
	s.True(errors.Is(s.registry.Destroy(s.defaultPath), ErrBadArguments))
	s.Equal(2, s.registry.Count())
}

func (s *RegistryTestSuite) TestDestroyNotFound() {
	err := s.registry.Destroy(s.testConfig.LogPath("never.log"))
	s.True(errors.Is(err, ErrNotFound))
}

func (s *RegistryTestSuite) TestDestroyThenRecreate() {
	path := s.testConfig.LogPath("recreate.log")

	old := s.registry.File(path, OverflowNone)
	s.Require().NoError(s.registry.Destroy(path))
	s.Equal(2, s.registry.Count())
	s.True(errors.Is(s.registry.Destroy(path), ErrNotFound))

	fresh := s.registry.File(path, OverflowNone)
	s.NotSame(old, fresh)
	s.Equal(3, s.registry.Count())

	// The forgotten handle keeps working
	old.Log(LevelNormal, "still here")
	s.Equal(recordLen("still here"), fresh.LogSize())
}

func (s *RegistryTestSuite) TestFallbackToConsole() {
	blocker := filepath.Join(s.testConfig.TempDir, "blocker")
	s.Require().NoError(os.WriteFile(blocker, nil, 0644))

	inst := s.registry.File(filepath.Join(blocker, "app.log"), OverflowTruncate)
	s.Same(s.registry.Console(), inst)
	s.Equal(2, s.registry.Count())

	inst = s.registry.File(s.testConfig.LogDir, OverflowTruncate)
	s.Same(s.registry.Console(), inst)
}

func (s *RegistryTestSuite) TestDefaultFallbackToConsole() {
	blocker := filepath.Join(s.testConfig.TempDir, "blocker")
	s.Require().NoError(os.WriteFile(blocker, nil, 0644))

	registry := NewRegistry(filepath.Join(blocker, "default.log"))
	s.Equal(1, registry.Count())
	s.Same(registry.Console(), registry.Default(OverflowTruncate))

	// Once the obstacle is gone the default logger is created
	s.Require().NoError(os.Remove(blocker))
	def := registry.Default(OverflowRotate)
	s.NotSame(registry.Console(), def)
	s.Equal(OverflowRotate, def.OverflowAction())
	s.Equal(2, registry.Count())
}

func (s *RegistryTestSuite) TestConcurrentCreateAndDestroy() {
	const (
		workers    = 8
		iterations = 1000
		paths      = 10
	)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				path := s.testConfig.LogPath(fmt.Sprintf("churn-%d.log", (w+i)%paths))
				inst := s.registry.File(path, OverflowTruncate)
				if inst.Path() != path {
					s.Failf("wrong instance", "got %q, want %q", inst.Path(), path)
					return
				}
				if err := s.registry.Destroy(path); err != nil && !errors.Is(err, ErrNotFound) {
					s.Failf("unexpected destroy error", "%v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	for i := 0; i < paths; i++ {
		s.registry.Destroy(s.testConfig.LogPath(fmt.Sprintf("churn-%d.log", i)))
	}
	s.Equal(2, s.registry.Count())
}

func (s *RegistryTestSuite) TestConcurrentFirstRequestCreatesOneInstance() {
	path := s.testConfig.LogPath("race.log")

	const workers = 16
	results := make([]*Instance, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			results[w] = s.registry.File(path, OverflowNone)
		}(w)
	}
	wg.Wait()

	for _, inst := range results {
		s.Same(results[0], inst)
	}
}

func (s *RegistryTestSuite) TestDestroyWhileLogging() {
	path := s.testConfig.LogPath("busy.log")
	held := s.registry.File(path, OverflowNone)

	const records = 500
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < records; i++ {
			held.Log(LevelNormal, fmt.Sprintf("record %04d", i))
		}
	}()

	for i := 0; i < 200; i++ {
		s.registry.Destroy(path)
		s.registry.File(path, OverflowNone)
	}
	<-done

	s.Equal(int64(records)*recordLen("record 0000"), testutils.FileSize(s.T(), path))
	for _, line := range testutils.ReadLines(s.T(), path) {
		s.Regexp(recordPattern, line)
	}
}
