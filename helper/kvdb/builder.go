package kvdb

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

const (
	// minLevelDBCache is the minimum memory allocate to leveldb
	// half write, half read
	minLevelDBCache = 8 // 8 MiB

	// minLevelDBHandles is the minimum number of files handles to leveldb open files
	minLevelDBHandles = 16

	// deployment records are tiny, keep the footprint small
	DefaultLevelDBCache        = 16 // 16 MiB
	DefaultLevelDBHandles      = 64
	DefaultLevelDBBloomKeyBits = 10
	DefaultLevelDBNoSync       = false
)

func max(a, b int) int {
	if a > b {
		return a
	}

	return b
}

type LevelDBBuilder interface {
	// set cache size
	SetCacheSize(int) LevelDBBuilder

	// set handles
	SetHandles(int) LevelDBBuilder

	// set bloom key bits
	SetBloomKeyBits(int) LevelDBBuilder

	// set no sync
	SetNoSync(bool) LevelDBBuilder

	// open an existing database without creating or writing it
	SetReadOnly(bool) LevelDBBuilder

	// build the storage
	Build() (KVStorage, error)
}

type leveldbBuilder struct {
	logger  hclog.Logger
	path    string
	options *opt.Options
}

func (builder *leveldbBuilder) SetCacheSize(cacheSize int) LevelDBBuilder {
	cacheSize = max(cacheSize, minLevelDBCache)

	builder.options.BlockCacheCapacity = cacheSize / 2 * opt.MiB
	builder.options.WriteBuffer = cacheSize / 4 * opt.MiB

	builder.logger.Debug("leveldb",
		"BlockCacheCapacity", fmt.Sprintf("%d Mib", cacheSize/2),
		"WriteBuffer", fmt.Sprintf("%d Mib", cacheSize/4),
	)

	return builder
}

func (builder *leveldbBuilder) SetHandles(handles int) LevelDBBuilder {
	builder.options.OpenFilesCacheCapacity = max(handles, minLevelDBHandles)

	builder.logger.Debug("leveldb",
		"OpenFilesCacheCapacity", builder.options.OpenFilesCacheCapacity,
	)

	return builder
}

func (builder *leveldbBuilder) SetBloomKeyBits(bloomKeyBits int) LevelDBBuilder {
	builder.options.Filter = filter.NewBloomFilter(bloomKeyBits)

	builder.logger.Debug("leveldb",
		"BloomFilter bits", bloomKeyBits,
	)

	return builder
}

func (builder *leveldbBuilder) SetNoSync(noSync bool) LevelDBBuilder {
	builder.options.NoSync = noSync

	builder.logger.Debug("leveldb",
		"NoSync", noSync,
	)

	return builder
}

func (builder *leveldbBuilder) SetReadOnly(readOnly bool) LevelDBBuilder {
	builder.options.ReadOnly = readOnly
	builder.options.ErrorIfMissing = readOnly

	builder.logger.Debug("leveldb",
		"ReadOnly", readOnly,
	)

	return builder
}

func (builder *leveldbBuilder) Build() (KVStorage, error) {
	db, err := leveldb.OpenFile(builder.path, builder.options)
	if err != nil {
		return nil, err
	}

	return &levelDBKV{db: db}, nil
}

// NewLevelDBBuilder creates the new leveldb storage builder
func NewLevelDBBuilder(logger hclog.Logger, path string) LevelDBBuilder {
	return &leveldbBuilder{
		logger: logger,
		path:   path,
		options: &opt.Options{
			OpenFilesCacheCapacity: DefaultLevelDBHandles,
			BlockCacheCapacity:     DefaultLevelDBCache / 2 * opt.MiB,
			WriteBuffer:            DefaultLevelDBCache / 4 * opt.MiB,
			Filter:                 filter.NewBloomFilter(DefaultLevelDBBloomKeyBits),
			NoSync:                 DefaultLevelDBNoSync,
		},
	}
}
