package speech

import "github.com/abadojack/whatlanggo"

// modelFor keeps the configured model unless the text is reliably detected
// as something other than English.
func (c *ElevenLabsClient) modelFor(text string) string {
	if !c.opts.AutoModel || c.opts.MultilingualModel == "" {
		return c.opts.Model
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() || info.Lang == whatlanggo.Eng {
		return c.opts.Model
	}
	return c.opts.MultilingualModel
}
