package campaign

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ajhcs/beacon/codec"
	"github.com/ajhcs/beacon/findings"
)

// envelopePath derives the on-disk path for a campaign's persisted
// cross-campaign memory: one file per compiled content hash (§6
// "Persisted state layout: one file per campaign content hash").
func envelopePath(dir string, hash [32]byte) string {
	return filepath.Join(dir, hex.EncodeToString(hash[:])+".harness")
}

// loadPersisted reads any prior envelope for this campaign's content
// hash, restoring the coordinator's cross-campaign memory and this
// campaign's regression capsule set. A missing file (first campaign
// against this content) is not an error.
func (c *Campaign) loadPersisted() error {
	path := envelopePath(c.cfg.Persist.Directory, c.ir.ContentHash)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("campaign: reading persisted state: %w", err)
	}
	env, err := codec.Decode(data)
	if err != nil {
		return fmt.Errorf("campaign: decoding persisted state: %w", err)
	}
	if err := c.memory.Load(&env); err != nil {
		return fmt.Errorf("campaign: loading coordinator memory: %w", err)
	}
	capsules, kinds, properties, err := findings.LoadRegressionCapsules(&env)
	if err != nil {
		return fmt.Errorf("campaign: loading regression capsules: %w", err)
	}
	c.regressionCapsules = capsules
	c.regressionKinds = kinds
	c.regressionProperties = properties
	return nil
}

// persist writes the coordinator's cross-campaign memory and this
// campaign's recorded findings' replay capsules to disk, keyed by
// content hash, for the next campaign against the same compiled spec.
func (c *Campaign) persist() error {
	dir := c.cfg.Persist.Directory
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("campaign: creating persist directory: %w", err)
	}
	env := codec.Envelope{Version: codec.CurrentVersion}
	if err := c.memory.Save(&env); err != nil {
		return fmt.Errorf("campaign: saving coordinator memory: %w", err)
	}
	if err := c.store.SaveCapsules(&env); err != nil {
		return fmt.Errorf("campaign: saving replay capsules: %w", err)
	}
	data, err := codec.Encode(env)
	if err != nil {
		return fmt.Errorf("campaign: encoding persisted state: %w", err)
	}
	path := envelopePath(dir, c.ir.ContentHash)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("campaign: writing persisted state: %w", err)
	}
	return nil
}
