package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"

	"skybrawl/client"
	"skybrawl/config"
	"skybrawl/logging"
	"skybrawl/server"
	"skybrawl/tui"
)

// skybrawl 终端客户端：可选在本进程内启动服务器（-host）
func main() {
	var (
		host    bool
		addr    string
		ipFile  string
		logFile string
		debug   bool
		bounds  bool
	)
	flag.BoolVar(&host, "host", false, "start a server in this process and join it")
	flag.StringVar(&addr, "addr", "", "server address host:port (default: address from -ip-file)")
	flag.StringVar(&ipFile, "ip-file", "ip.txt", "file holding the server IP address")
	flag.StringVar(&logFile, "log", "client.log", "log file path")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.BoolVar(&bounds, "bounds", false, "draw collision bounds")
	flag.Parse()

	// 终端被界面占用，日志只写文件
	if err := logging.Init(logging.Options{FilePath: logFile, Debug: debug}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.DefaultClient()
	switch {
	case host:
		scfg := config.DefaultServer()
		srv := server.New(scfg)
		if err := srv.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "start server: %v\n", err)
			os.Exit(1)
		}
		defer srv.Stop()
		_, port, _ := net.SplitHostPort(srv.Addr())
		cfg.Addr = net.JoinHostPort(config.DefaultPeerAddress, port)
	case addr != "":
		cfg.Addr = addr
	default:
		ip, err := config.LoadPeerAddress(ipFile)
		if err != nil {
			logging.Log.Warnw("peer address file", "err", err)
		}
		cfg.Addr = net.JoinHostPort(ip, strconv.Itoa(config.ServerPort))
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	sound := tui.NewSpeaker()
	if err := sound.Init(); err != nil {
		logging.Log.Warnw("audio disabled", "err", err)
	}
	defer sound.Close()

	renderer := tui.NewRenderer(screen)
	opts := tui.DrawOptions{ShowBounds: bounds}

	// 连接前先画一帧提示
	screen.Clear()
	w, h := screen.Size()
	for i, ch := range tui.TextConnecting {
		screen.SetContent((w-len(tui.TextConnecting))/2+i, h/2, ch, nil, tcell.StyleDefault)
	}
	screen.Show()

	session := client.Connect(ctx, cfg, sound)
	defer session.Close()

	run(screen, renderer, session, opts)
}

func run(screen tcell.Screen, renderer *tui.Renderer, session *client.Session, opts tui.DrawOptions) {
	ticker := time.NewTicker(16 * time.Millisecond) // ~60 FPS
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	input := tui.NewInput(tui.DefaultKeyMap())
	last := time.Now()
	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
					return
				case ev.Key() == tcell.KeyEnter:
					session.RequestCoopPartner()
				default:
					input.HandleKey(ev, time.Now(), session)
				}
			case *tcell.EventFocus:
				if !ev.Focused {
					input.Reset()
					session.ReleaseAll()
				}
			case *tcell.EventResize:
				screen.Sync()
			}

		case now := <-ticker.C:
			input.Expire(now, session)
			dt := now.Sub(last)
			last = now
			if session.Update(dt) == client.Abandon {
				logging.Log.Infow("session abandoned", "state", session.State(), "err", session.Err())
				return
			}
			renderer.Draw(session, opts)
		}
	}
}
