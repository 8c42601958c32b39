package i18n

import (
	"embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/iao-solana/internal/config"
	"golang.org/x/text/language"
)

//go:embed messages/*.toml
var messages embed.FS

// Data is passed to message templates.
type Data map[string]any

type Service struct {
	bundle   *i18n.Bundle
	matcher  language.Matcher
	fallback language.Tag
}

// New loads the embedded message files and, if configured, the files in
// cfg.BundleDir on top of them.
func New(cfg config.I18n) (*Service, error) {
	fallback, err := language.Parse(cfg.DefaultLanguage)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid default language %q", cfg.DefaultLanguage)
	}

	bundle := i18n.NewBundle(fallback)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := messages.ReadDir("messages")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read embedded messages")
	}

	for _, entry := range entries {
		if _, err := bundle.LoadMessageFileFS(messages, "messages/"+entry.Name()); err != nil {
			return nil, errors.Wrapf(err, "failed to load embedded message file %s", entry.Name())
		}
	}

	if cfg.BundleDir != "" {
		if err := loadDir(bundle, cfg.BundleDir); err != nil {
			return nil, err
		}
	}

	return &Service{
		bundle:   bundle,
		matcher:  language.NewMatcher(bundle.LanguageTags()),
		fallback: fallback,
	}, nil
}

func loadDir(bundle *i18n.Bundle, dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "failed to read message bundle dir %s", dir)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".toml") {
			continue
		}

		if _, err := bundle.LoadMessageFile(filepath.Join(dir, file.Name())); err != nil {
			return errors.Wrapf(err, "failed to load message file %s", file.Name())
		}
	}

	return nil
}

// Translate returns the message for key in lang. Unknown keys are returned
// unchanged so a missing translation never hides the error itself.
func (s *Service) Translate(key string, lang language.Tag, data ...Data) string {
	localizer := i18n.NewLocalizer(s.bundle, lang.String(), s.fallback.String())

	lc := &i18n.LocalizeConfig{MessageID: key}
	if len(data) > 0 {
		lc.TemplateData = data[0]
	}

	msg, err := localizer.Localize(lc)
	if err != nil {
		log.Debug().Err(err).Str("key", key).Str("lang", lang.String()).Msg("Translation missing")
		return key
	}

	return msg
}

// ParseAcceptLanguage picks the best supported language for an
// Accept-Language header value.
func (s *Service) ParseAcceptLanguage(header string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return s.fallback
	}

	_, idx, confidence := s.matcher.Match(tags...)
	if confidence == language.No {
		return s.fallback
	}

	return s.bundle.LanguageTags()[idx]
}

// Tags lists all languages with at least one message.
func (s *Service) Tags() []language.Tag {
	return s.bundle.LanguageTags()
}
