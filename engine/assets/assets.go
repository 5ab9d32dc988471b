package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/descriptor"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
)

// changeQueueSize bounds the changes waiting for the render thread. Further
// changes are dropped with a warning until it drains the channel.
const changeQueueSize = 64

var (
	ErrClosed        = errors.New("asset manager already closed")
	ErrAssetNotFound = errors.New("asset not found")
	ErrNoLoader      = errors.New("no loader registered for asset type")
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
	Resource   *metadata.Resource
}

// AssetChange reports a file that was created, written or removed under the
// watched directory.
type AssetChange struct {
	Path    string
	Type    metadata.ResourceType
	Removed bool
}

/**
 * @brief Indexes layout and model files below a directory and watches it.
 * The watcher goroutine only updates the index and emits AssetChange
 * values; loading happens on the goroutine calling LoadAsset.
 */
type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	started  bool
	changes  chan AssetChange
	errors   chan error
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		fsnotify: fsWatch,
		changes:  make(chan AssetChange, changeQueueSize),
		errors:   make(chan error, changeQueueSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// Initialize indexes assetsDir recursively and starts watching it.
func (am *AssetManager) Initialize(assetsDir string) error {
	if am.isClosed {
		return ErrClosed
	}
	if am.started {
		return fmt.Errorf("asset manager already watching a directory")
	}
	if err := am.watchRecursive(assetsDir); err != nil {
		return fmt.Errorf("watching %s: %w", assetsDir, err)
	}
	am.started = true
	go am.start()
	core.LogInfo("asset manager watching %s (%d assets)", assetsDir, am.count())
	return nil
}

// RegisterLoader sets the loader used for one asset type.
func (am *AssetManager) RegisterLoader(assetType metadata.ResourceType, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[assetType] = loader
}

// Assets lists the indexed paths of one type in lexical order.
func (am *AssetManager) Assets(assetType metadata.ResourceType) []string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	var out []string
	for path, info := range am.assets {
		if info.Type == assetType {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// LoadAsset loads, or reloads, an indexed asset with its registered loader.
func (am *AssetManager) LoadAsset(path string) (*metadata.Resource, error) {
	path = filepath.Clean(path)

	am.mutex.RLock()
	asset, exists := am.assets[path]
	loader, loaderExists := am.loaders[asset.Type]
	am.mutex.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, path)
	}
	if !loaderExists {
		return nil, fmt.Errorf("%w: %s", ErrNoLoader, asset.Type)
	}

	res, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	asset.LastLoaded = time.Now()
	asset.Resource = res
	am.assets[path] = asset
	am.mutex.Unlock()
	return res, nil
}

// UnloadAsset releases what the loader produced for path. The asset stays
// indexed and can be loaded again.
func (am *AssetManager) UnloadAsset(path string) error {
	path = filepath.Clean(path)

	am.mutex.Lock()
	defer am.mutex.Unlock()
	asset, exists := am.assets[path]
	if !exists || asset.Resource == nil {
		return fmt.Errorf("%w: %s is not loaded", ErrAssetNotFound, path)
	}
	loader, ok := am.loaders[asset.Type]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoLoader, asset.Type)
	}
	if err := loader.Unload(asset.Resource); err != nil {
		return err
	}
	asset.Resource = nil
	am.assets[path] = asset
	return nil
}

// Changes delivers file changes to the goroutine that owns the loaded data.
func (am *AssetManager) Changes() <-chan AssetChange {
	return am.changes
}

func (am *AssetManager) Errors() <-chan error {
	return am.errors
}

// Shutdown stops the watcher and closes both channels.
func (am *AssetManager) Shutdown() {
	if am.isClosed {
		return
	}
	am.isClosed = true
	if !am.started {
		am.fsnotify.Close()
		close(am.changes)
		close(am.errors)
		return
	}
	close(am.done)
	select {
	case <-am.stopped:
	case <-time.After(time.Second):
		core.LogWarn("asset watcher did not stop in time")
	}
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case e, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(e.Error())
			select {
			case am.errors <- e:
			default:
			}

		case <-am.done:
			am.fsnotify.Close()
			close(am.changes)
			close(am.errors)
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	path := filepath.Clean(e.Name)
	s, err := os.Stat(path)
	if err == nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 {
			if err := am.watchRecursive(path); err != nil {
				core.LogWarn("cannot watch %s: %s", path, err)
			}
		}
		return
	}

	switch {
	case e.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if am.handleFileEvent(path) {
			am.emit(AssetChange{Path: path, Type: determineAssetType(path)})
		}
	case e.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// a removed directory cannot be stat'ed, try to unwatch it anyway
		am.fsnotify.Remove(path)
		if t, ok := am.removeAsset(path); ok {
			am.emit(AssetChange{Path: path, Type: t, Removed: true})
		}
	}
}

func (am *AssetManager) emit(c AssetChange) {
	select {
	case am.changes <- c:
	default:
		core.LogWarn("asset change queue full, dropping change of %s", c.Path)
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files found there.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(filepath.Clean(walkPath))
		return nil
	})
}

// handleFileEvent indexes a created or modified file and reports whether it
// is an asset.
func (am *AssetManager) handleFileEvent(path string) bool {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	info := am.assets[path]
	info.Path = path
	info.Type = assetType
	am.assets[path] = info
	return true
}

// removeAsset drops the asset from the index if it was deleted.
func (am *AssetManager) removeAsset(path string) (metadata.ResourceType, bool) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	info, ok := am.assets[path]
	delete(am.assets, path)
	return info.Type, ok
}

func (am *AssetManager) count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

func determineAssetType(path string) metadata.ResourceType {
	if descriptor.IsLayoutFile(path) {
		return metadata.ResourceTypeLayout
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return metadata.ResourceTypeModel
	default:
		return metadata.ResourceTypeNone
	}
}
