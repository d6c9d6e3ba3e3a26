package podcasttools

import (
	"fmt"
)

const summarySystemPrompt = `You are an assistant that writes clear, faithful summaries of YouTube video transcripts.

Write a comprehensive summary of the transcript the user provides.

The summary should:
- Be between 400 and 600 words
- Cover the main points, key arguments and conclusions in the order they appear
- Keep a neutral, informative tone
- Use plain prose paragraphs without headings, bullet points or markdown
- Add no facts, opinions or details that are not in the transcript

Return only the summary text.`

const conversationSystemPromptTemplate = `You are an assistant that turns YouTube video transcripts into podcast-style conversations between two hosts named %[1]s and %[2]s.

The conversation should:
- Be engaging and flow naturally between the two hosts
- Cover the main points from the transcript in an informative way
- Be accessible to a general audience
- Use a conversational tone, not formal or academic phrasing
- End with a short conclusion or call to action
- Keep the total length between 700 and 1,200 words

For EACH line of dialogue, start with the speaker name followed by a colon.
For example:
%[1]s: Hey everyone, welcome back to the show!
%[2]s: Today we're digging into something pretty interesting.

Alternate between %[1]s and %[2]s throughout the conversation.

IMPORTANT GUIDELINES:
- Do not use asterisks, parentheses, stage directions or special characters
- Write as people actually speak, not as they write
- Use contractions (don't, I'm, we're) as people naturally do
- Occasionally include short questions or brief reactions
- Vary sentence length for a natural cadence`

const conversationUserPromptTemplate = `Here is a transcript from a YouTube video:

%s

Based on this transcript, create an engaging podcast conversation between %s and %s. Make it sound like a natural conversation between friends, not a formal discussion.`

const summaryTitlePrompt = `Create a clear, descriptive title for the summary the user provides.

The title should be:
- Brief (4-8 words)
- Factual and informative
- Represent the main topic or conclusion
- Free of quotes and special characters

Return only the title text, nothing else.`

const dialogueTitlePrompt = `Create a catchy, descriptive title for a podcast episode based on the conversation the user provides.

The title should be:
- Concise (4-8 words)
- Engaging and descriptive
- Clearly indicate the main topic
- Free of quotes and special characters

Return only the title text, nothing else.`

// contentPrompts 返回指定模式的系统指令与用户内容
func contentPrompts(mode Mode, transcript string, voice Voice) (string, string) {
	if mode == ModeConversation {
		host1, host2 := HostsFor(voice)
		return fmt.Sprintf(conversationSystemPromptTemplate, host1, host2),
			fmt.Sprintf(conversationUserPromptTemplate, transcript, host1, host2)
	}
	return summarySystemPrompt, transcript
}

func titlePrompt(kind TitleKind) string {
	if kind == TitleKindDialogue {
		return dialogueTitlePrompt
	}
	return summaryTitlePrompt
}
