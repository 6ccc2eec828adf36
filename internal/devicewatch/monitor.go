package devicewatch

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"reelcam/internal/config"
	"reelcam/internal/logging"
)

// Action is the hotplug transition carried by an Event.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// DefaultSubsystem is the udev subsystem for V4L2 capture nodes.
const DefaultSubsystem = "video4linux"

// Event reports a configured device node appearing or disappearing.
type Event struct {
	Action    Action
	Device    string
	Subsystem string
}

// Handler receives translated events on the monitor goroutine.
type Handler func(ctx context.Context, event Event)

// Monitor watches udev netlink events for the configured capture devices.
type Monitor struct {
	logger    *slog.Logger
	handler   Handler
	subsystem string
	devices   map[string]struct{}

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// New returns nil when device watching is disabled or no device is configured.
func New(cfg *config.Config, logger *slog.Logger, handler Handler) *Monitor {
	if cfg == nil || !cfg.DeviceWatch.Enabled {
		return nil
	}
	devices := make(map[string]struct{})
	for _, dev := range []string{cfg.Capture.FrontDevice, cfg.Capture.BackDevice} {
		if dev = strings.TrimSpace(dev); dev != "" {
			devices[dev] = struct{}{}
		}
	}
	if len(devices) == 0 {
		return nil
	}
	subsystem := strings.TrimSpace(cfg.DeviceWatch.Subsystem)
	if subsystem == "" {
		subsystem = DefaultSubsystem
	}
	return &Monitor{
		logger:    logging.NewComponentLogger(logger, "device-watch"),
		handler:   handler,
		subsystem: subsystem,
		devices:   devices,
	}
}

// Start connects to the udev netlink socket. Connection failures are logged
// and leave the monitor stopped.
func (m *Monitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("failed to connect to netlink socket; camera hotplug will not be tracked",
			logging.Error(err),
			logging.String(logging.FieldEventType, "netlink_connect_failed"),
			logging.String(logging.FieldErrorHint, "ensure the process may open NETLINK_KOBJECT_UEVENT sockets"),
			logging.String(logging.FieldImpact, "device removal goes unnoticed until the next operation"),
		)
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.loop(ctx, conn, quit)

	m.logger.Info("device watch started",
		logging.String(logging.FieldEventType, "device_watch_started"),
		logging.String("subsystem", m.subsystem),
		logging.Int("devices", len(m.devices)),
	)
	return nil
}

// Stop shuts the monitor down. Safe to call repeatedly.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("device watch stopped",
		logging.String(logging.FieldEventType, "device_watch_stopped"),
	)
}

// Running reports whether the monitor is active.
func (m *Monitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) loop(ctx context.Context, conn *netlink.UEventConn, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(queue, errs, m.matcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.dispatch(ctx, uevent)
		case err := <-errs:
			m.logger.Warn("netlink monitor error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "netlink_monitor_error"),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "hotplug events may be missed"),
			)
		}
	}
}

// matcher accepts add and remove events for the watched subsystem.
func (m *Monitor) matcher() netlink.Matcher {
	action := "add|remove"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": m.subsystem,
		},
	})
	return rules
}

func (m *Monitor) dispatch(ctx context.Context, uevent netlink.UEvent) {
	event, ok := m.translate(uevent)
	if !ok {
		m.logger.Debug("ignoring uevent",
			logging.String("action", string(uevent.Action)),
			logging.String("kobj", uevent.KObj),
		)
		return
	}
	m.logger.Info("camera device changed",
		logging.String(logging.FieldEventType, "device_"+string(event.Action)),
		logging.String("device", event.Device),
	)
	if m.handler != nil {
		m.handler(ctx, event)
	}
}

// translate maps a uevent onto an Event for one of the watched nodes.
func (m *Monitor) translate(uevent netlink.UEvent) (Event, bool) {
	var action Action
	switch Action(uevent.Action) {
	case ActionAdd:
		action = ActionAdd
	case ActionRemove:
		action = ActionRemove
	default:
		return Event{}, false
	}
	if sub := uevent.Env["SUBSYSTEM"]; sub != "" && sub != m.subsystem {
		return Event{}, false
	}
	device := deviceName(uevent)
	if device == "" {
		return Event{}, false
	}
	if _, watched := m.devices[device]; !watched {
		return Event{}, false
	}
	return Event{Action: action, Device: device, Subsystem: m.subsystem}, true
}

// deviceName resolves the /dev node from DEVNAME or the DEVPATH leaf.
func deviceName(uevent netlink.UEvent) string {
	if devname := strings.TrimSpace(uevent.Env["DEVNAME"]); devname != "" {
		if !strings.HasPrefix(devname, "/") {
			devname = "/dev/" + devname
		}
		return devname
	}
	devpath := strings.TrimSpace(uevent.Env["DEVPATH"])
	if devpath == "" {
		return ""
	}
	return "/dev/" + path.Base(devpath)
}
