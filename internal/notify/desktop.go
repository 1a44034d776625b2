package notify

import (
	"fmt"
	"os/exec"
	"runtime"
)

// DesktopSink mirrors finished toasts to the OS notification area.
// Persistent and info toasts are not forwarded.
type DesktopSink struct {
	Title string
}

// Send implements Sink.
func (d DesktopSink) Send(t Toast) error {
	if t.Persistent || t.Kind == KindInfo {
		return nil
	}
	title := d.Title
	if title == "" {
		title = "shokodash"
	}
	if t.Kind == KindError {
		title += " error"
	}

	message := t.Text()
	if message == "" {
		message = string(t.Kind)
	}

	switch runtime.GOOS {
	case "darwin":
		return sendMacOSNotification(title, message)
	case "linux":
		return sendLinuxNotification(title, message)
	default:
		return fmt.Errorf("desktop notifications not supported on %s", runtime.GOOS)
	}
}

// sendMacOSNotification sends a notification on macOS using osascript
func sendMacOSNotification(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	cmd := exec.Command("osascript", "-e", script)
	return cmd.Run()
}

// sendLinuxNotification sends a notification on Linux using notify-send
func sendLinuxNotification(title, message string) error {
	if _, err := exec.LookPath("notify-send"); err != nil {
		return fmt.Errorf("notify-send not found")
	}
	cmd := exec.Command("notify-send", title, message)
	return cmd.Run()
}
