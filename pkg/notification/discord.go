package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/config"
	"github.com/sanskrit-coders/ashtadhyayi/pkg/httputils"
)

const (
	maxEmbedsPerMessage = 10
	maxCharactersPerMsg = 6000

	// hardcoded limit of fields to avoid hammering the api
	maxTotalFields = 250
)

type DiscordMessage struct {
	Content interface{}    `json:"content"`
	Embeds  []DiscordEmbed `json:"embeds,omitempty"`
}

type DiscordEmbed struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Color       int                  `json:"color"`
	Fields      []DiscordEmbedsField `json:"fields,omitempty"`
	Footer      DiscordEmbedsFooter  `json:"footer,omitempty"`
	Timestamp   time.Time            `json:"timestamp"`
}

type DiscordEmbedsFooter struct {
	Text string `json:"text"`
}

type DiscordEmbedsField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedColors int

const (
	LIGHT_BLUE EmbedColors = 0x58b9ff
	RED        EmbedColors = 0xed4245
	GREEN      EmbedColors = 0x57f287
	GRAY       EmbedColors = 0x99aab5
)

type discordSender struct {
	log    *logrus.Entry
	config config.NotificationsConfig

	httpClient *http.Client
}

func (d *discordSender) Name() string {
	return "discord"
}

func NewDiscordSender(log *logrus.Entry, config config.NotificationsConfig) Sender {
	log = log.WithField("sender", "discord")
	return &discordSender{
		log:        log,
		config:     config,
		httpClient: httputils.NewRetryableHttpClient(30*time.Second, nil, log),
	}
}

func (d *discordSender) calculateEmbedSize(embed DiscordEmbed) (int, error) {
	jsonData, err := json.Marshal(embed)
	if err != nil {
		return 0, err
	}
	return len(jsonData), nil
}

func (d *discordSender) Send(ctx context.Context, title string, description string, runTime time.Duration, fields []Field, dryRun bool) error {
	var (
		allEmbeds   []DiscordEmbed
		totalFields = len(fields)
		timestamp   = time.Now()

		batches      [][]DiscordEmbed
		currentBatch []DiscordEmbed
		currentChars int
	)

	if dryRun {
		title = title + " (Dry Run)"
	}

	if totalFields == 0 && d.config.SkipEmptyRun {
		return nil
	}

	rt := runTime.Truncate(time.Millisecond).String()

	// summary only when there is nothing itemised or too much of it
	if totalFields == 0 || totalFields > maxTotalFields || !d.config.Detailed {
		allEmbeds = append(allEmbeds, DiscordEmbed{
			Title:       title,
			Description: description,
			Color:       int(summaryColor(totalFields)),
			Footer: DiscordEmbedsFooter{
				Text: d.buildFooter(0, totalFields, rt),
			},
			Timestamp: timestamp,
		})
	} else {
		for i, field := range fields {
			embed := DiscordEmbed{
				Title:  title,
				Color:  int(RED),
				Fields: d.parseFieldValueToInlineFields(field.Value),
				Footer: DiscordEmbedsFooter{
					Text: d.buildFooter(i+1, totalFields, rt),
				},
				Timestamp: timestamp,
			}
			if field.Name != "" {
				embed.Description = fmt.Sprintf("**%s**", field.Name)
			}
			allEmbeds = append(allEmbeds, embed)
		}
		allEmbeds = append(allEmbeds, DiscordEmbed{
			Title:       fmt.Sprintf("%s - Summary", title),
			Description: description,
			Color:       int(summaryColor(totalFields)),
			Footer: DiscordEmbedsFooter{
				Text: d.buildFooter(0, 0, rt),
			},
			Timestamp: timestamp,
		})
	}

	// max 10 embeds and 6000 characters per message
	flush := func() {
		if len(currentBatch) == 0 {
			return
		}
		batches = append(batches, currentBatch)
		currentBatch = nil
		currentChars = 0
	}

	for _, e := range allEmbeds {
		eSize, err := d.calculateEmbedSize(e)
		if err != nil {
			return errors.Wrap(err, "calculate embed size")
		}
		if len(currentBatch) >= maxEmbedsPerMessage || currentChars+eSize > maxCharactersPerMsg {
			flush()
		}
		currentBatch = append(currentBatch, e)
		currentChars += eSize
	}
	flush()

	totalMsgs := len(batches)
	for i, batch := range batches {
		jsonData, err := json.Marshal(DiscordMessage{Content: nil, Embeds: batch})
		if err != nil {
			return errors.Wrap(err, "marshal discord message")
		}
		if err := d.sendRequest(ctx, jsonData); err != nil {
			return errors.Wrapf(err, "send discord message %d/%d", i+1, totalMsgs)
		}

		d.log.Debugf("Sent Discord message %d/%d (%d embeds, %d chars).",
			i+1, totalMsgs, len(batch), len(jsonData))
	}

	d.log.Debugf("All %d Discord messages sent successfully.", totalMsgs)
	return nil
}

func (d *discordSender) CanSend() bool {
	return d.config.Service.Discord != ""
}

func (d *discordSender) sendRequest(ctx context.Context, jsonData []byte) error {
	_, err := httputils.DoRequest(ctx, d.httpClient, http.MethodPost, d.config.Service.Discord,
		bytes.NewReader(jsonData), map[string]string{"Content-Type": "application/json"})
	return err
}

// BuildField constructs a Field based on the provided action and build options.
func (d *discordSender) BuildField(action Action, opt BuildOptions) Field {
	var inlineFields []DiscordEmbedsField

	add := func(name, value string, inline bool) {
		if value == "" {
			return
		}
		inlineFields = append(inlineFields, DiscordEmbedsField{Name: name, Value: value, Inline: inline})
	}

	add("Vritti", opt.Vritti, true)
	add("Source", opt.Source, true)

	switch action {
	case ActionFetch:
		add("Action", "Fetched", true)
	case ActionDump:
		add("Action", "Written", true)
	case ActionPrune:
		add("Action", "Removed", true)
	case ActionFailure:
		add("Action", "Failed", true)
	}

	if opt.Size > 0 {
		add("Size", humanize.IBytes(uint64(opt.Size)), true)
	}
	add("Path", opt.Path, false)
	if opt.Err != nil {
		add("Error", opt.Err.Error(), false)
	}

	jsonData, _ := json.Marshal(inlineFields)

	return Field{
		Name:  opt.ID,
		Value: string(jsonData),
	}
}

func (d *discordSender) parseFieldValueToInlineFields(value string) []DiscordEmbedsField {
	var fields []DiscordEmbedsField

	if err := json.Unmarshal([]byte(value), &fields); err != nil {
		d.log.WithError(err).Error("Failed to parse field value as JSON")
		return []DiscordEmbedsField{}
	}

	return fields
}

func (d *discordSender) buildFooter(progress int, totalFields int, runTime string) string {
	if totalFields == 0 {
		return fmt.Sprintf("Took: %s", runTime)
	}

	return fmt.Sprintf("Progress: %d/%d | Took: %s", progress, totalFields, runTime)
}

func summaryColor(failures int) EmbedColors {
	if failures > 0 {
		return RED
	}
	return GREEN
}
