// Copyright 2021 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package capscache_test

import (
	"fmt"
	"testing"

	"git.sr.ht/~wocky/xmpp/capscache"
	"git.sr.ht/~wocky/xmpp/stanza"
)

func tree() *stanza.NodeTree {
	return stanza.NewNodeTree(stanza.NewNode("query", "http://jabber.org/protocol/disco#info"))
}

func TestGetPutDelete(t *testing.T) {
	c := capscache.NewMemory()
	if _, ok := c.Get("a"); ok {
		t.Fatal("Get on empty cache found an entry")
	}
	c.Put("a", tree())
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get did not find entry just Put")
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("Get found entry after Delete")
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", c.Len())
	}
}

func TestEvictionWatermarks(t *testing.T) {
	c := capscache.NewMemorySized(10)
	for i := 0; i < 11; i++ {
		c.Put(fmt.Sprintf("key%d", i), tree())
	}
	if c.Len() != 9 {
		t.Fatalf("Len() after crossing high watermark = %d, want 9 (low watermark)", c.Len())
	}
	// The oldest entry (key0) should have been evicted first.
	if _, ok := c.Get("key0"); ok {
		t.Error("oldest entry key0 survived eviction")
	}
	if _, ok := c.Get("key10"); !ok {
		t.Error("newest entry key10 was evicted")
	}
}

func TestGetRefreshesRecency(t *testing.T) {
	c := capscache.NewMemorySized(3)
	c.Put("a", tree())
	c.Put("b", tree())
	c.Put("c", tree())
	// Touch "a" so it is no longer the least-recently-used entry.
	c.Get("a")
	c.Put("d", tree())
	if _, ok := c.Get("a"); !ok {
		t.Error("recently-touched entry a was evicted")
	}
}

func TestEnsureSchemaResetsOnMismatch(t *testing.T) {
	c := capscache.NewMemory()
	c.EnsureSchema(1)
	c.Put("a", tree())
	c.EnsureSchema(1)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("EnsureSchema with the same version cleared the cache")
	}
	c.EnsureSchema(2)
	if c.Len() != 0 {
		t.Fatalf("Len() after schema mismatch = %d, want 0", c.Len())
	}
}
