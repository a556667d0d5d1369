package ai

import (
	"fmt"
	"strings"
)

// BuildReminderPrompt produces the instruction for one reminder message.
func BuildReminderPrompt(mc MessageContext) string {

	var b strings.Builder

	b.WriteString("You are an intelligent task reminder assistant. Generate a professional yet personalized reminder message.\n\n")

	b.WriteString("Context:\n")
	b.WriteString("- Recipient: ")
	b.WriteString(mc.RecipientName)
	b.WriteString("\n")

	b.WriteString("- Task: ")
	b.WriteString(mc.TaskTitle)
	b.WriteString("\n")

	desc := mc.TaskDescription
	if desc == "" {
		desc = "No description provided"
	}
	b.WriteString("- Description: ")
	b.WriteString(desc)
	b.WriteString("\n")

	b.WriteString("- Deadline: ")
	b.WriteString(mc.Deadline)
	b.WriteString("\n")

	b.WriteString("- Priority: ")
	b.WriteString(mc.Priority)
	b.WriteString("\n")

	urgency := "upcoming"
	if mc.DaysRemaining < 0 {
		urgency = "OVERDUE"
	} else if mc.DaysRemaining == 0 {
		urgency = "DUE TODAY"
	}
	fmt.Fprintf(&b, "- Days remaining: %d (%s)\n", mc.DaysRemaining, urgency)
	fmt.Fprintf(&b, "- This is reminder #%d\n", mc.ReminderCount)
	fmt.Fprintf(&b, "- Required tone: %s\n\n", mc.Tone)

	b.WriteString(`Tone Guidelines:
- friendly: Warm, supportive, offering help
- firm: Professional, clear expectations, slightly urgent
- urgent: Very urgent, emphasizing importance and consequences
- escalation: Critical, this is overdue, immediate action required

Generate a reminder message following these rules:
1. Address the recipient by first name
2. Be concise (max 3-4 sentences for body)
3. Include specific task details
4. Match the tone exactly
5. End with a clear call to action
6. For escalation, mention this may need to be escalated to management

Respond in this exact JSON format:
{
  "subject": "Email subject line",
  "body": "The email body message"
}`)

	return b.String()
}
