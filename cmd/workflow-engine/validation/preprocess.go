package validation

import (
	"context"
	"fmt"

	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/mode"
	"github.com/Roshan-yadav-evil-genius/TheOneEye-Backend-sub000/cmd/workflow-engine/node"
)

// QueueNameKey is the config entry naming the cross-loop queue a node
// writes to or reads from
const QueueNameKey = "queue_name"

// QueueNamer wires queue names onto writer/reader pairs connected by an
// edge. Explicit names are never overwritten: an existing name on either
// endpoint is reused for the other, so a fan-out writer keeps one queue.
type QueueNamer struct{}

func (QueueNamer) Name() string       { return "queue_namer" }
func (QueueNamer) Modes() []mode.Mode { return nil }
func (QueueNamer) Priority() int      { return 10 }

func (QueueNamer) Apply(ctx context.Context, t *Target) error {
	for _, n := range t.Graph.Nodes() {
		writer, ok := n.Instance.(node.QueueWriter)
		if !ok || !writer.WritesQueue() {
			continue
		}
		for _, key := range n.Branches() {
			for _, next := range n.Next()[key] {
				reader, ok := next.Instance.(node.QueueReader)
				if !ok || !reader.ReadsQueue() {
					continue
				}

				writerCfg := n.Instance.Config()
				readerCfg := next.Instance.Config()

				name, _ := writerCfg.ConfigString(QueueNameKey)
				if name == "" {
					name, _ = readerCfg.ConfigString(QueueNameKey)
				}
				if name == "" {
					name = fmt.Sprintf("queue_%s_%s", n.ID, next.ID)
				}

				if existing, _ := writerCfg.ConfigString(QueueNameKey); existing == "" {
					writerCfg.SetConfig(QueueNameKey, name)
				}
				if existing, _ := readerCfg.ConfigString(QueueNameKey); existing == "" {
					readerCfg.SetConfig(QueueNameKey, name)
				}
			}
		}
	}
	return nil
}
