package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"tunneld/app"
	"tunneld/internal/cache"
	"tunneld/internal/config"
	"tunneld/internal/ctl"
	"tunneld/internal/directory"
	"tunneld/internal/domain"
	"tunneld/internal/logging"
	"tunneld/internal/svc"
	"tunneld/utils"
)

const usage = `usage: tunneld <command> [flags]

commands:
  daemon        run the tunnel daemon
  connect       connect to a server, picked by id or by criteria
  disconnect    terminate the active tunnel
  status        show the daemon's connection state
  query         list servers matching the given criteria
  killswitch    enable or disable the firewall killswitch
  config        write a default configuration file
  service       install, uninstall, start or stop the system service

run 'tunneld <command> -h' for command flags
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var code int
	switch os.Args[1] {
	case "daemon":
		code = runDaemon(os.Args[2:])
	case "connect":
		code = runConnect(os.Args[2:])
	case "disconnect":
		code = runDisconnect(os.Args[2:])
	case "status":
		code = runStatus(os.Args[2:])
	case "query":
		code = runQuery(os.Args[2:])
	case "killswitch":
		code = runKillswitch(os.Args[2:])
	case "config":
		code = runConfig(os.Args[2:])
	case "service":
		code = runService(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		code = 2
	}
	os.Exit(code)
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, "error:", err)
	return 1
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ExitOnError)
	cfgPath := fs.String("config", "", "configuration file path")
	debug := fs.Bool("debug", false, "verbose logging")
	_ = fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fail(err)
	}

	dir := cache.New(cfg.CacheDir)
	logger := logging.NewDaemon(dir.DaemonLog(), *debug)
	defer logger.Sync()

	return app.Run(*cfgPath, logger)
}

// selectionFlags are shared by connect and query: they narrow the directory
// and pick the selection strategy.
type selectionFlags struct {
	fastest   *bool
	random    *bool
	leastLoad *bool
	country   *string
	maxLoad   *int
	tier      *string
	features  *string
}

func addSelectionFlags(fs *flag.FlagSet) selectionFlags {
	return selectionFlags{
		fastest:   fs.Bool("f", false, "pick the fastest matching server"),
		random:    fs.Bool("r", false, "pick a random matching server"),
		leastLoad: fs.Bool("least-load", false, "pick the least loaded matching server"),
		country:   fs.String("country", "", "two-letter exit country code"),
		maxLoad:   fs.Int("max-load", -1, "maximum server load percentage"),
		tier:      fs.String("tier", "", "server tier: free, premium or all"),
		features:  fs.String("features", "", "comma-separated required features"),
	}
}

func (sf selectionFlags) criteria(base config.Filters) config.Filters {
	if *sf.country != "" {
		base.Country = strings.ToUpper(*sf.country)
	}
	if *sf.maxLoad >= 0 {
		base.MaxLoad = *sf.maxLoad
	}
	if *sf.tier != "" {
		base.Tier = *sf.tier
	}
	if *sf.features != "" {
		base.Features = strings.Split(*sf.features, ",")
	}
	return base
}

func (sf selectionFlags) mode(base config.Select) config.Select {
	switch {
	case *sf.fastest:
		return config.SelectFastest
	case *sf.random:
		return config.SelectRandom
	case *sf.leastLoad:
		return config.SelectLeastLoad
	}
	return base
}

func runConnect(args []string) int {
	fs := flag.NewFlagSet("connect", flag.ExitOnError)
	cfgPath := fs.String("config", "", "configuration file path")
	debug := fs.Bool("debug", false, "verbose logging")
	protoFlag := fs.String("p", "", "tunnel protocol: udp or tcp")
	sel := addSelectionFlags(fs)
	_ = fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fail(err)
	}
	logger := logging.NewConsole(*debug)
	defer logger.Sync()
	dir := cache.New(cfg.CacheDir)

	proto := cfg.DefaultProtocol
	if *protoFlag != "" {
		if proto, err = domain.ParseProtocol(*protoFlag); err != nil {
			return fail(err)
		}
	}

	serverID := fs.Arg(0)
	if serverID == "" {
		servers, err := directory.NewClient(cfg, dir, logger).Logicals()
		if err != nil {
			return fail(err)
		}
		pick := servers.Filter(sel.criteria(cfg.DefaultCriteria)).Select(sel.mode(cfg.DefaultSelect))
		if pick == nil {
			fmt.Fprintln(os.Stderr, "no server matches the given criteria")
			return 1
		}
		serverID = pick.ID
		fmt.Printf("connecting to %s (%s, load %d%%)\n", pick.Name, pick.ExitCountry, pick.Load)
	}

	if err := ctl.NewClient(dir.Socket()).Connect(serverID, proto); err != nil {
		return fail(err)
	}
	return 0
}

func runDisconnect(args []string) int {
	fs := flag.NewFlagSet("disconnect", flag.ExitOnError)
	cfgPath := fs.String("config", "", "configuration file path")
	_ = fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fail(err)
	}

	if err := ctl.NewClient(cache.New(cfg.CacheDir).Socket()).Disconnect(); err != nil {
		return fail(err)
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	cfgPath := fs.String("config", "", "configuration file path")
	showIP := fs.Bool("ip", false, "also look up and show the public address")
	_ = fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fail(err)
	}
	dir := cache.New(cfg.CacheDir)

	res, err := ctl.NewClient(dir.Socket()).Status()
	if err != nil {
		return fail(err)
	}

	var details ctl.StatusDetails
	if res.Connected != nil {
		if f, err := os.Open(dir.TunnelLog()); err == nil {
			if device, err := utils.ParseTunnelDevice(f); err == nil {
				details.Device = device
			}
			f.Close()
		}
	}
	if *showIP {
		ip, err := utils.DefaultIPChecker{}.PublicIP(&http.Client{Timeout: 10 * time.Second})
		if err != nil {
			fmt.Fprintln(os.Stderr, "warning: public ip lookup failed:", err)
		} else {
			details.PublicIP = ip
		}
	}

	ctl.RenderStatus(os.Stdout, res, details)
	return 0
}

func runQuery(args []string) int {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	cfgPath := fs.String("config", "", "configuration file path")
	debug := fs.Bool("debug", false, "verbose logging")
	sel := addSelectionFlags(fs)
	_ = fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fail(err)
	}
	logger := logging.NewConsole(*debug)
	defer logger.Sync()

	servers, err := directory.NewClient(cfg, cache.New(cfg.CacheDir), logger).Logicals()
	if err != nil {
		return fail(err)
	}

	matches := servers.Filter(sel.criteria(cfg.DefaultCriteria)).SortByScore()
	ctl.RenderServers(os.Stdout, matches)
	return 0
}

func runKillswitch(args []string) int {
	fs := flag.NewFlagSet("killswitch", flag.ExitOnError)
	cfgPath := fs.String("config", "", "configuration file path")
	_ = fs.Parse(args)

	action := fs.Arg(0)
	if action != "enable" && action != "disable" {
		fmt.Fprintln(os.Stderr, "usage: tunneld killswitch enable|disable")
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fail(err)
	}

	if err := ctl.NewClient(cache.New(cfg.CacheDir).Socket()).Killswitch(action == "enable"); err != nil {
		return fail(err)
	}
	return 0
}

func runConfig(args []string) int {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.Arg(0) != "writedefault" {
		fmt.Fprintln(os.Stderr, "usage: tunneld config writedefault [path]")
		return 2
	}

	path := fs.Arg(1)
	if path == "" {
		path = config.SearchPaths[0]
	}
	if err := config.WriteDefault(path); err != nil {
		return fail(err)
	}
	fmt.Println("wrote default configuration to", path)
	return 0
}

func runService(args []string) int {
	fs := flag.NewFlagSet("service", flag.ExitOnError)
	cfgPath := fs.String("config", "", "configuration file path baked into the service definition")
	_ = fs.Parse(args)

	action := fs.Arg(0)
	if action == "" {
		fmt.Fprintln(os.Stderr, "usage: tunneld service install|uninstall|start|stop")
		return 2
	}

	manager, err := svc.New(*cfgPath)
	if err != nil {
		return fail(err)
	}
	if err := manager.Control(action); err != nil {
		return fail(err)
	}
	fmt.Printf("service %s: done\n", action)
	return 0
}
