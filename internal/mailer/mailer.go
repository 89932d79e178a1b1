// Package mailer 把消息队列中的通知渲染成邮件
package mailer

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var ErrUnsupportedType = errors.New("不支持的邮件类型")

type kind struct {
	file    string
	subject string
	data    func() any
}

var kinds = map[string]kind{
	domain.MailAssignmentAssigned: {
		file:    "assignment_assigned.html",
		subject: "排班系统 - 新的排班安排",
		data:    func() any { return &domain.AssignmentMailData{} },
	},
	domain.MailAssignmentRequested: {
		file:    "assignment_requested.html",
		subject: "排班系统 - 新的班次申请",
		data:    func() any { return &domain.AssignmentMailData{} },
	},
	domain.MailAssignmentDecided: {
		file:    "assignment_decided.html",
		subject: "排班系统 - 排班审批结果",
		data:    func() any { return &domain.AssignmentMailData{} },
	},
	domain.MailEnrollmentDecided: {
		file:    "enrollment_decided.html",
		subject: "排班系统 - 课程报名结果",
		data:    func() any { return &domain.EnrollmentMailData{} },
	},
}

var funcs = template.FuncMap{
	"assignmentStatus": func(s domain.AssignmentStatus) string {
		switch s {
		case domain.AssignmentConfirmed:
			return "确认"
		case domain.AssignmentRejected:
			return "拒绝"
		}
		return string(s)
	},
	"enrollmentStatus": func(s domain.CourseEnrollmentStatus) string {
		switch s {
		case domain.EnrollmentApproved:
			return "通过"
		case domain.EnrollmentRejected:
			return "被拒绝"
		case domain.EnrollmentCancelled:
			return "取消"
		}
		return string(s)
	},
}

type envelope struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

type Mailer struct {
	from      string
	templates *template.Template
}

func New(from string) (*Mailer, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Mailer{from: from, templates: tmpl}, nil
}

// Render 返回邮件主题和 HTML 正文
func (m *Mailer) Render(body []byte) (to, subject, html string, err error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", "", "", fmt.Errorf("邮件信息反序列化失败: %w", err)
	}

	k, ok := kinds[env.Type]
	if !ok {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnsupportedType, env.Type)
	}

	data := k.data()
	if err := json.Unmarshal(env.Data, data); err != nil {
		return "", "", "", fmt.Errorf("邮件数据反序列化失败: %w", err)
	}

	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, k.file, data); err != nil {
		return "", "", "", err
	}

	return env.To, k.subject, buf.String(), nil
}

// Build 把一条队列消息转换为可以发送的邮件
func (m *Mailer) Build(body []byte) (*mail.Msg, error) {
	to, subject, html, err := m.Render(body)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	return msg, nil
}
