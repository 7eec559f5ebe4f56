//go:build windows
// +build windows

package daemon

import (
	"syscall"
	"unsafe"

	"fyne.io/systray"
	"go.uber.org/zap"

	"github.com/username/calendar-pager/pkg/dateutil"
)

var (
	user32      = syscall.NewLazyDLL("user32.dll")
	messageBoxW = user32.NewProc("MessageBoxW")
)

const (
	MB_OK              = 0x00000000
	MB_ICONINFORMATION = 0x00000040
)

// TrayApp represents system tray application
type TrayApp struct {
	daemon *Daemon
	logger *zap.Logger
	quit   chan struct{}
}

// NewTrayApp creates a new system tray application
func NewTrayApp(daemon *Daemon, logger *zap.Logger) (*TrayApp, error) {
	return &TrayApp{
		daemon: daemon,
		logger: logger,
		quit:   make(chan struct{}),
	}, nil
}

// Run starts the system tray application (blocks until Quit)
func (t *TrayApp) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *TrayApp) onReady() {
	icon, err := CalendarIcon(t.daemon.Today().Components())
	if err != nil {
		t.logger.Warn("Failed to render tray icon", zap.Error(err))
	} else {
		systray.SetIcon(icon)
	}
	systray.SetTitle("Cal")
	systray.SetTooltip(t.daemon.Status())

	mPrev := systray.AddMenuItem("Previous month", "Show the previous month")
	mToday := systray.AddMenuItem("Today", "Show the current month")
	mNext := systray.AddMenuItem("Next month", "Show the next month")
	systray.AddSeparator()
	mStatus := systray.AddMenuItem("Status", "Show the month in focus")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit the application")

	t.daemon.OnNewDay(func(_, next dateutil.Date) {
		if icon, err := CalendarIcon(next.Components()); err == nil {
			systray.SetIcon(icon)
		}
	})

	go func() {
		if err := t.daemon.Run(t.daemon.ctx); err != nil {
			t.logger.Error("Daemon loop failed", zap.Error(err))
		}
	}()

	go func() {
		for {
			select {
			case <-mPrev.ClickedCh:
				t.daemon.Post(t.daemon.PreviousMonth)
			case <-mToday.ClickedCh:
				t.daemon.Post(t.daemon.GoToday)
			case <-mNext.ClickedCh:
				t.daemon.Post(t.daemon.NextMonth)
			case <-mStatus.ClickedCh:
				t.daemon.Post(func() { showMessageBox("Calendar", t.daemon.Status()) })
			case <-mQuit.ClickedCh:
				t.logger.Info("Quit clicked from tray")
				t.daemon.Stop()
				systray.Quit()
				return
			case <-t.quit:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *TrayApp) onExit() {
	t.logger.Info("System tray exited")
}

// Stop stops the system tray application
func (t *TrayApp) Stop() {
	select {
	case <-t.quit:
	default:
		close(t.quit)
	}
}

// SetTooltip replaces the tray tooltip
func (t *TrayApp) SetTooltip(text string) {
	systray.SetTooltip(text)
}

// ShowNotification shows a notification (Windows only)
func (t *TrayApp) ShowNotification(title, message string) {
	// fyne.io/systray has no notifications; the tooltip carries the message
	t.logger.Info("Notification", zap.String("title", title), zap.String("message", message))
	systray.SetTooltip(title + ": " + message)
}

func showMessageBox(title, message string) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	messagePtr, _ := syscall.UTF16PtrFromString(message)
	messageBoxW.Call(
		0,
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(MB_OK|MB_ICONINFORMATION),
	)
}
