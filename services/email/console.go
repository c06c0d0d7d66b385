package emailsvc

import (
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/trezcool/aulavirtual/core"
)

type ConsoleService struct {
	defaultFromEmail mail.Address
	subjPrefix       string
	logger           core.Logger

	mu   sync.Mutex
	wg   sync.WaitGroup
	sent []core.EmailMessage
}

var _ core.EmailService = (*ConsoleService)(nil)

// NewConsoleService logs emails instead of sending them (DEV & tests).
func NewConsoleService(conf *core.Config, logger core.Logger) *ConsoleService {
	return &ConsoleService{
		defaultFromEmail: conf.Server.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
		logger:           logger,
	}
}

func (svc *ConsoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		svc.wg.Add(1)
		go svc.sendMessage(msg)
	}
}

func (svc *ConsoleService) sendMessage(msg *core.EmailMessage) {
	defer svc.wg.Done()
	if err := msg.Render(); err != nil {
		svc.logger.Error("rendering email", err)
		return
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return
	}
	svc.logger.Info(svc.format(*msg))

	svc.mu.Lock()
	svc.sent = append(svc.sent, *msg)
	svc.mu.Unlock()
}

func (svc *ConsoleService) format(msg core.EmailMessage) string {
	body := new(strings.Builder)
	_, _ = fmt.Fprintf(body, "From: %s\r\n", svc.defaultFromEmail.String())
	_, _ = fmt.Fprintf(body, "To: %s\r\n", joinAddresses(msg.To))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n\r\n", svc.subjPrefix+msg.Subject)
	_, _ = fmt.Fprintf(body, "%s\r\n", msg.Body)
	return body.String()
}

// Sent waits for pending sends and returns every message sent so far.
func (svc *ConsoleService) Sent() []core.EmailMessage {
	svc.wg.Wait()
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]core.EmailMessage(nil), svc.sent...)
}

func joinAddresses(addrs []mail.Address) string {
	s := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		s = append(s, addr.String())
	}
	return strings.Join(s, ", ")
}
