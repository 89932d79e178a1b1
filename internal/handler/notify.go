package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

func (h *Handler) publishMail(ctx context.Context, msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.Queue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   uuid.NewString(),
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
}

// notify 在状态变更提交后发送通知，发送失败只记录日志，不影响已经完成的操作
func (h *Handler) notify(ctx context.Context, msg domain.MailMessage) {
	if h.mailChannel == nil || msg.To == "" {
		return
	}
	if err := h.publishMail(context.WithoutCancel(ctx), msg); err != nil {
		slog.Error("发送通知失败", "type", msg.Type, "to", msg.To, "error", err)
	}
}
