package emailsvc

import (
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/terakoya-app/terakoya/core"
)

var (
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
	wg           sync.WaitGroup
)

// consoleService prints messages to stdout. DEV and TEST envs only.
type consoleService struct {
	defaultFromEmail mail.Address
	subjPrefix       string
	disableOutput    bool
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) core.EmailService {
	return &consoleService{
		defaultFromEmail: mail.Address{Address: conf.DefaultFromEmail},
		subjPrefix:       "[" + conf.AppName + "] ",
	}
}

// NewConsoleServiceMock keeps messages in SentMessages without printing.
func NewConsoleServiceMock(conf *core.Config) core.EmailService {
	return &consoleService{
		defaultFromEmail: mail.Address{Address: conf.DefaultFromEmail},
		subjPrefix:       "[" + conf.AppName + "] ",
		disableOutput:    true,
	}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		msg := msg
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.sendMessage(msg)
		}()
	}
}

func (svc consoleService) sendMessage(msg *core.EmailMessage) {
	if len(msg.To) == 0 || msg.BodyStr == "" {
		return
	}
	if !svc.disableOutput {
		body := new(strings.Builder)
		_, _ = fmt.Fprintf(body, "From: %s\r\n", svc.defaultFromEmail.String())
		_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
		_, _ = fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+msg.Subject)
		_, _ = fmt.Fprintf(body, "To: %s\r\n\r\n", joinAddresses(msg.To))
		_, _ = fmt.Fprint(body, msg.BodyStr)
		fmt.Println(body.String())
	}
	mu.Lock()
	SentMessages = append(SentMessages, *msg)
	mu.Unlock()
}

// Wait blocks until queued messages settle. Tests and graceful shutdown.
func Wait() { wg.Wait() }

func joinAddresses(addrs []mail.Address) string {
	strs := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		strs = append(strs, addr.String())
	}
	return strings.Join(strs, ", ")
}
