package main

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"

	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"
)

// answerCache keeps solved answers for the lifetime of the process, keyed by
// image content, so a repeated image is only sent once.
type answerCache struct {
	cache *ristretto.Cache
}

func newAnswerCache() (*answerCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		BufferItems: 64,
		NumCounters: 100000,
		MaxCost:     10000,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create answer cache")
	}
	return &answerCache{cache: cache}, nil
}

func (c *answerCache) Get(key string) (string, bool) {
	val, found := c.cache.Get(key)
	if !found {
		return "", false
	}

	answer, ok := val.(string)
	return answer, ok
}

func (c *answerCache) Set(key, answer string) {
	c.cache.Set(key, answer, 1)
	c.cache.Wait()
}

func (c *answerCache) Close() {
	c.cache.Close()
}

// fingerprint is the md5 of the image at path, suffixed with the case flag
// since it changes what the solver returns.
func fingerprint(path string, caseSensitive bool) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", errors.Wrapf(err, "hash %s", path)
	}

	return fmt.Sprintf("%x:%t", hash.Sum(nil), caseSensitive), nil
}
