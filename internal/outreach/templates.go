// Package outreach renders the canned dealer-to-seller messages and computes
// the follow-up schedule.
package outreach

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"text/template"

	"github.com/revomotors/api-leads/internal/estimator"
)

const (
	InitialContact  = "initial_contact"
	FollowUp1       = "follow_up_1"
	FollowUp2       = "follow_up_2"
	RequestMoreInfo = "request_more_info"
)

// LeadContext is the data substituted into a template.
type LeadContext struct {
	Year           int
	Make           string
	Model          string
	Mileage        int
	SellerName     string
	OfferAmount    float64
	DealerName     string
	DealershipName string
	DealerPhone    string
}

type Draft struct {
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return "$" + estimator.Thousands(int64(math.Round(v))) },
	"miles": func(v int) string { return estimator.Thousands(int64(v)) },
}

func mustTemplate(name, subject, body string) messageTemplate {
	return messageTemplate{
		subject: template.Must(template.New(name + ".subject").Funcs(funcs).Parse(subject)),
		body:    template.Must(template.New(name + ".body").Funcs(funcs).Parse(body)),
	}
}

var templates = map[string]messageTemplate{
	InitialContact: mustTemplate(InitialContact,
		`Interest in Your {{.Vehicle}}`,
		`Hi {{.SellerName}},

I hope this message finds you well! My name is {{.DealerName}} from {{.DealershipName}}, and I came across your {{.Vehicle}} listing.

We're actively looking for quality vehicles like yours, and after reviewing the details, I'd love to discuss a potential purchase.

Based on our initial assessment:
• Vehicle: {{.Vehicle}}
• Mileage: {{miles .Mileage}} miles
• Our preliminary offer: {{money .OfferAmount}}

Would you be available for a quick chat to discuss this further? I'd be happy to answer any questions and provide more details about our offer.

Looking forward to hearing from you!

Best regards,
{{.DealerName}}
{{.DealershipName}}
{{.DealerPhone}}`),

	FollowUp1: mustTemplate(FollowUp1,
		`Following up - {{.Vehicle}}`,
		`Hi {{.SellerName}},

I wanted to follow up on my previous message about your {{.Vehicle}}. I understand you're probably busy, so I wanted to reach out again.

We're still very interested in your vehicle and our offer of {{money .OfferAmount}} still stands. We can make the process quick and easy:

✓ Fast, hassle-free transaction
✓ Same-day payment available
✓ We handle all paperwork
✓ No hidden fees

Would you be open to discussing this further? Feel free to call or text me anytime.

Best,
{{.DealerName}}
{{.DealershipName}}`),

	FollowUp2: mustTemplate(FollowUp2,
		`Final follow-up - {{.Vehicle}}`,
		`Hi {{.SellerName}},

This is my final follow-up about your {{.Vehicle}}. I completely understand if you've already sold it or decided to keep it.

If you're still interested in selling, our offer of {{money .OfferAmount}} remains available. We've had great success with similar vehicles and would love to add yours to our inventory.

No pressure at all - just wanted to make sure you had all the information you need to make the best decision.

Wishing you all the best,
{{.DealerName}}
{{.DealershipName}}`),

	RequestMoreInfo: mustTemplate(RequestMoreInfo,
		`Quick questions about your {{.Vehicle}}`,
		`Hi {{.SellerName}},

Thank you for listing your {{.Vehicle}}! We're definitely interested, but I'd love to gather a bit more information to provide you with our best offer:

• Service history - do you have maintenance records?
• Any accidents or damage history?
• Current mechanical condition?
• Reason for selling?
• Timeline - when are you looking to sell?

Once I have these details, I can provide you with a comprehensive offer within 24 hours.

Thanks!
{{.DealerName}}
{{.DealershipName}}`),
}

// ResolveType maps an unknown or empty key to initial_contact.
func ResolveType(key string) string {
	key = strings.TrimSpace(key)
	if _, ok := templates[key]; ok {
		return key
	}
	return InitialContact
}

// Vehicle reads like "2020 Toyota Camry", skipping missing parts.
func (c LeadContext) Vehicle() string {
	parts := make([]string, 0, 3)
	if c.Year > 0 {
		parts = append(parts, strconv.Itoa(c.Year))
	}
	for _, p := range []string{c.Make, c.Model} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

type renderData struct {
	LeadContext
	Vehicle string
}

// Render fills the template for key with ctx.
func Render(key string, ctx LeadContext) (Draft, error) {
	key = ResolveType(key)
	tpl := templates[key]

	if strings.TrimSpace(ctx.SellerName) == "" {
		ctx.SellerName = "there"
	}
	if strings.TrimSpace(ctx.DealerName) == "" {
		ctx.DealerName = "Our Team"
	}
	if strings.TrimSpace(ctx.DealershipName) == "" {
		ctx.DealershipName = "Our Dealership"
	}
	data := renderData{LeadContext: ctx, Vehicle: ctx.Vehicle()}

	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, data); err != nil {
		return Draft{}, err
	}
	if err := tpl.body.Execute(&body, data); err != nil {
		return Draft{}, err
	}
	return Draft{Type: key, Subject: subject.String(), Body: strings.TrimRight(body.String(), "\n")}, nil
}
