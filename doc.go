// Package warden tracks live process trees.
//
// A caller registers root processes with a Manager, either by their real
// process id or, for launches that happen indirectly (a protocol handler, a
// launcher that re-executes itself), by a placeholder id that is resolved
// when a process with a matching name starts. From then on every process
// start and stop reported by the operating system is correlated against all
// registered trees in parallel: children are attached under their parent,
// exited processes are marked Dead, and whole trees can be killed on demand
// or on shutdown.
//
// # Basic Usage
//
//	import "github.com/EvilLord666/warden"
//
//	mgr := warden.NewManager()
//	opts := warden.NewOptions(warden.WithCleanOnShutdown(true))
//	if err := mgr.Initialize(ctx, opts); err != nil {
//	    log.Fatal(err)
//	}
//	defer mgr.Stop()
//
//	key, _ := mgr.RegisterRoot("game", cmd.Process.Pid, nil,
//	    warden.WithChildAddedHandler(func(c warden.ChildAdded) {
//	        log.Printf("%s (%d) started under %d", c.Name, c.PID, c.ParentPID)
//	    }))
//
// # Deferred Launches
//
//	pid := mgr.NextPlaceholderID()
//	_, res := mgr.RegisterRoot("HeroesOfTheStorm", pid, nil)
//	openURL("battlenet://Hero")
//	realPID, err := res.Wait(ctx)
//
// The placeholder resolves to the first starting process whose image name,
// extension stripped, contains the declared name (whitespace removed,
// case-insensitive).
//
// # Privileges
//
// Observing every process on the host needs an elevated caller (root on
// Unix, an elevated token on Windows). Initialize fails with ErrPermission
// otherwise.
package warden
