package pagesketch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is the default debounce interval for file watch events.
const DefaultWatchDebounce = 300 * time.Millisecond

// fileWatcher starts a new run when the script or its configuration
// changes on disk.
type fileWatcher struct {
	watcher   *fsnotify.Watcher
	files     map[string]bool
	debounce  time.Duration
	onChange  func(path string)
	onError   func(error)
	stopCh    chan struct{}
	stoppedCh chan struct{}
	mu        sync.Mutex
	running   bool
}

// newFileWatcher watches paths. onChange runs once per burst of changes,
// with the last path that changed.
func newFileWatcher(paths []string, debounce time.Duration, onChange func(string), onError func(error)) (*fileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	// Editors often save by renaming a temporary file over the original,
	// which drops a watch on the file itself. Watch the directories.
	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			watcher.Close()
			return nil, err
		}
		files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, err
		}
		dirs[dir] = true
	}

	return &fileWatcher{
		watcher:   watcher,
		files:     files,
		debounce:  debounce,
		onChange:  onChange,
		onError:   onError,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}, nil
}

// Start begins watching in a goroutine.
func (fw *fileWatcher) Start() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.running {
		return
	}
	fw.running = true
	go fw.watchLoop()
}

// Stop stops watching and waits for the loop to exit.
func (fw *fileWatcher) Stop() {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		fw.watcher.Close()
		return
	}
	fw.running = false
	fw.mu.Unlock()

	close(fw.stopCh)
	<-fw.stoppedCh
}

// relevant reports whether event touches a watched file in a way that
// changes its content.
func (fw *fileWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	return err == nil && fw.files[abs]
}

func (fw *fileWatcher) watchLoop() {
	defer close(fw.stoppedCh)
	defer fw.watcher.Close()

	var timer *time.Timer
	var timerCh <-chan time.Time
	var changed string

	for {
		select {
		case <-fw.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.relevant(event) {
				continue
			}
			changed = event.Name
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(fw.debounce)
			timerCh = timer.C

		case <-timerCh:
			timer, timerCh = nil, nil
			if fw.onChange != nil {
				fw.onChange(changed)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			if fw.onError != nil {
				fw.onError(err)
			}
		}
	}
}
