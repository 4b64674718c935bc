package docstore

// EmptyContent is an editor document with a single empty paragraph.
const EmptyContent = `{"type":"doc","content":[{"type":"paragraph"}]}`

// WelcomeContent seeds new documents until the user starts typing.
const WelcomeContent = `{"type":"doc","content":[` +
	`{"type":"heading","attrs":{"level":1},"content":[{"type":"text","text":"Welcome to Apollo Documents"}]},` +
	`{"type":"paragraph","content":[{"type":"text","text":"Everything you write is saved in this browser as you type."}]},` +
	`{"type":"bulletList","content":[` +
	`{"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":"Click the title above to rename this document."}]}]},` +
	`{"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":"Use the toolbar to format text, or export to PDF, DOCX, ODT or JSON."}]}]},` +
	`{"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":"Archived documents stay in the trash for 30 days."}]}]}` +
	`]},` +
	`{"type":"paragraph"}` +
	`]}`
