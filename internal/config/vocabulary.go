package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"resumelens/internal/errors"
	"resumelens/internal/skills"
	"resumelens/internal/types"
)

// vocabularyFile is the on-disk shape of a skill lexicon.
type vocabularyFile struct {
	Skills     []string            `mapstructure:"skills"`
	MultiWord  []string            `mapstructure:"multiWord"`
	Variations map[string][]string `mapstructure:"variations"`
	Importance struct {
		High   []string `mapstructure:"high"`
		Medium []string `mapstructure:"medium"`
	} `mapstructure:"importance"`
	Stopwords []string `mapstructure:"stopwords"`
}

// LoadVocabulary reads a YAML skill lexicon and converts it into the
// analyzer's vocabulary. An empty path returns the built-in default.
func LoadVocabulary(path string) (*skills.Vocabulary, error) {
	if path == "" {
		return skills.DefaultVocabulary(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file %s: %w", path, err)
	}

	var file vocabularyFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vocabulary file %s: %w", path, err)
	}

	if len(file.Skills) == 0 {
		return nil, fmt.Errorf("vocabulary file %s defines no skills", path)
	}

	vocab := &skills.Vocabulary{
		Skills:     make(map[string]struct{}, len(file.Skills)),
		MultiWord:  file.MultiWord,
		Variations: file.Variations,
		Importance: make(map[string]types.Importance),
		Stopwords:  make(map[string]struct{}, len(file.Stopwords)),
	}
	for _, s := range file.Skills {
		vocab.Skills[s] = struct{}{}
	}
	for _, s := range file.Importance.High {
		vocab.Importance[s] = types.ImportanceHigh
	}
	for _, s := range file.Importance.Medium {
		vocab.Importance[s] = types.ImportanceMedium
	}
	for _, s := range file.Stopwords {
		vocab.Stopwords[s] = struct{}{}
	}
	if vocab.Variations == nil {
		vocab.Variations = map[string][]string{}
	}

	return vocab, nil
}

// vocabularyDebounce coalesces the burst of write events editors and
// atomic renames produce into a single reload.
const vocabularyDebounce = 500 * time.Millisecond

// VocabularyWatcher reloads the skill lexicon when its file changes.
type VocabularyWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onReload func(*skills.Vocabulary)
	logger   *errors.Logger
	done     chan struct{}
}

// NewVocabularyWatcher starts watching path and invokes onReload with
// each successfully loaded vocabulary. Failed reloads are logged and
// the previous vocabulary stays in effect.
func NewVocabularyWatcher(path string, onReload func(*skills.Vocabulary), logger *errors.Logger) (*VocabularyWatcher, error) {
	if path == "" {
		return nil, fmt.Errorf("vocabulary watcher requires a file path")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory, not the file: editors and configmap updates
	// replace the file, which drops a watch placed on the inode.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch vocabulary directory: %w", err)
	}

	vw := &VocabularyWatcher{
		watcher:  watcher,
		path:     path,
		onReload: onReload,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go vw.run()

	if logger != nil {
		logger.Info("Watching vocabulary file for changes", "path", path)
	}

	return vw, nil
}

func (vw *VocabularyWatcher) run() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case event, ok := <-vw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(vw.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(vocabularyDebounce)
				timerC = timer.C
			} else {
				timer.Reset(vocabularyDebounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			vw.reload()

		case err, ok := <-vw.watcher.Errors:
			if !ok {
				return
			}
			if vw.logger != nil {
				vw.logger.Warn("Vocabulary watcher error", "error", err)
			}

		case <-vw.done:
			return
		}
	}
}

func (vw *VocabularyWatcher) reload() {
	vocab, err := LoadVocabulary(vw.path)
	if err != nil {
		if vw.logger != nil {
			vw.logger.Warn("Vocabulary reload failed, keeping previous lexicon",
				"path", vw.path, "error", err)
		}
		return
	}

	vw.onReload(vocab)
	if vw.logger != nil {
		vw.logger.Info("Vocabulary reloaded",
			"path", vw.path, "skills", len(vocab.Skills))
	}
}

// Close stops the watcher.
func (vw *VocabularyWatcher) Close() error {
	close(vw.done)
	return vw.watcher.Close()
}
