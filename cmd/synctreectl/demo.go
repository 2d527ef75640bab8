package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/teranos/synctree/config"
	"github.com/teranos/synctree/listenprovider/memprovider"
	"github.com/teranos/synctree/logger"
	"github.com/teranos/synctree/node"
	"github.com/teranos/synctree/path"
	"github.com/teranos/synctree/query"
	"github.com/teranos/synctree/synctree"
	"github.com/teranos/synctree/view"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run registration, listen setup, a server push, and the resulting events in-process",
	RunE:  runDemo,
}

// consoleRegistration is a stand-in for a real subscriber: the core
// never invokes registrations directly, so observation here happens
// by reading the tree's materialized state after each step instead.
type consoleRegistration struct{ name string }

func (r consoleRegistration) Equal(other view.EventRegistration) bool {
	o, ok := other.(consoleRegistration)
	return ok && o.name == r.name
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	wire := memprovider.New(logger.Logger)

	// The server-side tree owns the authoritative data. It has a
	// provider of its own, so its writes do not reach wire by
	// themselves: each one is mirrored into wire by hand, the transport
	// the client subscribes through.
	serverTree := synctree.New(memprovider.New(logger.Logger), logger.Logger)
	usersPath := path.New("rooms", "lobby", "users")

	serverTree.ApplyUserOverwrite(usersPath, node.FromChildren(map[string]node.Node{
		"alice": node.NewLeaf("online"),
	}), 1, true)
	wire.Set(usersPath, node.FromChildren(map[string]node.Node{
		"alice": node.NewLeaf("online"),
	}))

	clientTree := synctree.New(wire, logger.Logger)
	clientTree.SetNextTagStart(cfg.Sync.NextQueryTagStart)
	reg := consoleRegistration{name: "demo-client"}

	fmt.Println("registering a default listener at", usersPath.String())
	events := clientTree.AddEventRegistration(query.New(usersPath), reg)
	printEvents(events)

	fmt.Println("draining the provider's queued snapshot and completion")
	wire.Pump()
	printState(clientTree, usersPath)

	fmt.Println("server pushes a new user")
	serverTree.ApplyUserOverwrite(usersPath.Child("bob"), node.NewLeaf("online"), 2, true)
	wire.Merge(usersPath, map[string]node.Node{"bob": node.NewLeaf("online")})
	wire.Pump()
	printState(clientTree, usersPath)

	stats := clientTree.Stats()
	fmt.Printf("client tree stats: sync_points=%d active_tags=%d pending_writes=%d\n",
		stats.SyncPoints, stats.ActiveTags, stats.PendingWrites)

	return nil
}

func printEvents(events []view.Event) {
	for _, e := range events {
		fmt.Printf("  %s %s child=%s\n", e.Type, e.Path.String(), e.ChildKey)
	}
}

func printState(tree *synctree.SyncTree, p path.Path) {
	cache := tree.CalcCompleteEventCache(p, nil)
	if cache == nil {
		fmt.Println("  (no data known yet)")
		return
	}
	var keys []string
	(*cache).ForEachChild(func(key string, child node.Node) bool {
		keys = append(keys, key)
		return true
	})
	sort.Strings(keys)
	fmt.Print("  users:")
	for _, k := range keys {
		fmt.Printf(" %s=%v", k, (*cache).GetImmediateChild(k).Value())
	}
	fmt.Println()
}
