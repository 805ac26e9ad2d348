package handlers

import (
	"log"
	"net/http"
)

// ChatPage serves the contract-review chat interface at /.
func (h *Handler) ChatPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeHTML(w, chatPageHTML)
	}
}

// KnowledgePage serves the knowledge-note interface at /knowledge.
func (h *Handler) KnowledgePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeHTML(w, knowledgePageHTML)
	}
}

func writeHTML(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(html)); err != nil {
		log.Printf("Failed to write HTML response: %v", err)
	}
}

const chatPageHTML = `<!DOCTYPE html>
<html lang="ja">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>契約書レビューAI</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
               background: #f9fafb; color: #333; margin: 0; }
        .container { max-width: 900px; margin: 0 auto; padding: 30px 16px; }
        h1 { text-align: center; margin-bottom: 4px; }
        .subtitle { text-align: center; color: #6b7280; margin-bottom: 24px; }
        .card { background: white; border: 1px solid #e5e7eb; border-radius: 10px;
                padding: 20px; margin-bottom: 20px; }
        #messages { height: 380px; overflow-y: auto; display: flex; flex-direction: column; gap: 12px; }
        .msg { max-width: 80%; padding: 12px 16px; border-radius: 10px; white-space: pre-wrap; }
        .msg.user { align-self: flex-end; background: #3b82f6; color: white; }
        .msg.ai { align-self: flex-start; background: #f3f4f6; border: 1px solid #e5e7eb; }
        .msg .time { font-size: 11px; opacity: 0.6; margin-top: 6px; }
        .msg .files { font-size: 12px; opacity: 0.8; margin-top: 6px; }
        textarea, input[type=text] { width: 100%; box-sizing: border-box; padding: 10px;
                border: 1px solid #d1d5db; border-radius: 6px; font: inherit; }
        textarea { min-height: 90px; resize: vertical; }
        button { background: #2563eb; color: white; border: none; border-radius: 6px;
                padding: 10px 22px; font: inherit; cursor: pointer; }
        button:disabled { opacity: 0.5; cursor: default; }
        button.secondary { background: white; color: #374151; border: 1px solid #d1d5db; }
        .row { display: flex; gap: 10px; align-items: center; margin-top: 10px; }
        .attachment { display: inline-flex; gap: 6px; align-items: center; background: #eff6ff;
                border-radius: 999px; padding: 4px 12px; font-size: 13px; margin: 4px 4px 0 0; }
        .attachment button { background: none; border: none; color: #ef4444; padding: 0; }
        .panel { font-size: 12px; white-space: pre-wrap; border-radius: 6px; padding: 14px;
                margin-top: 14px; display: none; }
        .panel.debug { background: #fee2e2; color: #991b1b; }
        .panel.texts { background: #f3f4f6; color: #374151; }
        .panel.prompt { background: #eff6ff; color: #1e40af; }
        a.nav { display: block; text-align: center; margin-top: 10px; color: #2563eb; }
    </style>
</head>
<body>
    <div class="container">
        <h1>契約書レビューAI</h1>
        <p class="subtitle">一流の弁護士視点からリーガルリスクを分析します</p>

        <div class="card">
            <div id="messages"><p style="color:#9ca3af;text-align:center">契約書の内容や画像をアップロードして、リーガルリスクの分析を開始してください。</p></div>
        </div>

        <div class="panel debug" id="debug-panel"></div>
        <div class="panel texts" id="texts-panel"></div>
        <div class="panel prompt" id="prompt-panel"></div>

        <div class="card">
            <div class="row">
                <button class="secondary" onclick="document.getElementById('file-input').click()">📎 画像・ファイル追加</button>
                <input type="file" id="file-input" multiple accept="image/*,.pdf,.doc,.docx,.xls,.xlsx" style="display:none">
                <span id="file-count" style="color:#6b7280;font-size:13px"></span>
            </div>
            <div id="attachments"></div>
            <div class="row"><textarea id="message" placeholder="契約書の内容を入力してください..."></textarea></div>
            <div class="row"><input type="text" id="custom" placeholder="AIへの追加指示（例：特定条項のリスクを重点的に指摘して など）"></div>
            <div class="row" style="justify-content:flex-end">
                <button id="send" onclick="sendMessage()">リーガル分析を実行</button>
            </div>
        </div>
        <a class="nav" href="/knowledge">法務ナレッジ管理 →</a>
    </div>

    <script>
        let attachments = [];
        let loading = false;

        document.getElementById('file-input').addEventListener('change', (e) => {
            attachments = attachments.concat(Array.from(e.target.files || []));
            renderAttachments();
        });

        function renderAttachments() {
            const box = document.getElementById('attachments');
            box.innerHTML = '';
            attachments.forEach((file, i) => {
                const chip = document.createElement('span');
                chip.className = 'attachment';
                chip.textContent = '📎 ' + file.name + ' ';
                const del = document.createElement('button');
                del.textContent = '×';
                del.onclick = () => { attachments.splice(i, 1); renderAttachments(); };
                chip.appendChild(del);
                box.appendChild(chip);
            });
            document.getElementById('file-count').textContent =
                attachments.length ? attachments.length + '個のファイル' : '';
        }

        function appendMessage(role, content, files) {
            const box = document.getElementById('messages');
            if (box.firstElementChild && box.firstElementChild.tagName === 'P') box.innerHTML = '';
            const div = document.createElement('div');
            div.className = 'msg ' + role;
            div.textContent = content;
            if (files && files.length) {
                const f = document.createElement('div');
                f.className = 'files';
                f.textContent = '添付ファイル: ' + files.map(x => x.name).join(', ');
                div.appendChild(f);
            }
            const t = document.createElement('div');
            t.className = 'time';
            t.textContent = new Date().toLocaleTimeString();
            div.appendChild(t);
            box.appendChild(div);
            box.scrollTop = box.scrollHeight;
        }

        function showPanel(id, label, text) {
            const el = document.getElementById(id);
            if (!text) { el.style.display = 'none'; return; }
            el.style.display = 'block';
            el.textContent = label + '\n' + text;
        }

        async function sendMessage() {
            const messageEl = document.getElementById('message');
            const customEl = document.getElementById('custom');
            const text = messageEl.value;
            const custom = customEl.value;
            if (!text.trim() && attachments.length === 0 && !custom.trim()) return;
            if (loading) return;

            appendMessage('user', text + (custom ? '\n【追加プロンプト】' + custom : ''), attachments);
            const sendFiles = attachments.slice();
            messageEl.value = ''; customEl.value = ''; attachments = []; renderAttachments();
            loading = true;
            document.getElementById('send').disabled = true;

            try {
                let res;
                // Files travel only on the multipart path, and that path is
                // only taken when the first attachment is a PDF.
                if (sendFiles.length > 0 && sendFiles[0].type === 'application/pdf') {
                    const form = new FormData();
                    form.append('message', text);
                    form.append('customInstruction', custom);
                    sendFiles.forEach(f => form.append('file', f));
                    res = await fetch('/api/chat', { method: 'POST', body: form });
                } else {
                    res = await fetch('/api/chat', {
                        method: 'POST',
                        headers: { 'Content-Type': 'application/json' },
                        body: JSON.stringify({ message: text, customInstruction: custom })
                    });
                }
                const data = await res.json();
                showPanel('debug-panel', 'デバッグ情報:', res.ok ? '' : JSON.stringify(data.debug, null, 2));
                if (data.debug && data.debug.extractedTexts) {
                    showPanel('texts-panel', '抽出テキスト:', data.debug.extractedTexts.join('\n---\n'));
                }
                if (data.debug && data.debug.assembledPrompt) {
                    showPanel('prompt-panel', 'AIに送信したプロンプト:', data.debug.assembledPrompt);
                }
                appendMessage('ai', data.result.content);
            } catch (e) {
                showPanel('debug-panel', 'デバッグ情報:', String(e));
                appendMessage('ai', 'AI応答の取得に失敗しました。');
            } finally {
                loading = false;
                document.getElementById('send').disabled = false;
            }
        }

        document.getElementById('message').addEventListener('keydown', (e) => {
            if (e.key === 'Enter' && !e.shiftKey) { e.preventDefault(); sendMessage(); }
        });
    </script>
</body>
</html>`

const knowledgePageHTML = `<!DOCTYPE html>
<html lang="ja">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>法務ナレッジ管理</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
               background: #f9fafb; color: #333; margin: 0; }
        .container { max-width: 900px; margin: 0 auto; padding: 30px 16px; }
        h1 { text-align: center; margin-bottom: 4px; }
        .subtitle { text-align: center; color: #6b7280; margin-bottom: 24px; }
        .card { background: white; border: 1px solid #e5e7eb; border-radius: 10px;
                padding: 20px; margin-bottom: 20px; }
        label { display: block; font-size: 13px; font-weight: 600; margin-bottom: 6px; }
        input[type=text], textarea { width: 100%; box-sizing: border-box; padding: 10px;
                border: 1px solid #d1d5db; border-radius: 6px; font: inherit; margin-bottom: 14px; }
        textarea { min-height: 110px; resize: vertical; }
        button { background: #2563eb; color: white; border: none; border-radius: 6px;
                padding: 10px 22px; font: inherit; cursor: pointer; }
        .item { border: 1px solid #e5e7eb; border-radius: 8px; padding: 14px; margin-bottom: 12px; }
        .item h3 { margin: 0 0 4px; }
        .category { display: inline-block; background: #dbeafe; color: #1e40af;
                font-size: 12px; border-radius: 999px; padding: 2px 10px; }
        .item p { white-space: pre-wrap; color: #4b5563; font-size: 14px; }
        .item .date { font-size: 12px; color: #9ca3af; }
        .item .delete { float: right; background: none; border: none; color: #ef4444;
                cursor: pointer; font-size: 13px; padding: 0; }
        a.nav { display: block; text-align: center; margin-top: 10px; color: #2563eb; }
    </style>
</head>
<body>
    <div class="container">
        <h1>法務ナレッジ管理</h1>
        <p class="subtitle">自社の法務知見を追加して、AIの分析精度を向上させます</p>

        <div class="card">
            <h2>新しいナレッジを追加</h2>
            <label>タイトル</label>
            <input type="text" id="title" placeholder="例: 取引先との契約における注意点">
            <label>カテゴリ</label>
            <input type="text" id="category" placeholder="例: 契約法、労働法、知的財産">
            <label>内容</label>
            <textarea id="content" placeholder="法務知見の詳細を入力してください..."></textarea>
            <div style="text-align:right"><button onclick="addKnowledge()">ナレッジを追加</button></div>
        </div>

        <div class="card">
            <h2 id="list-title">登録済みナレッジ (0件)</h2>
            <div id="items"><p style="color:#9ca3af;text-align:center">まだナレッジが登録されていません。<br>上記フォームから追加してください。</p></div>
        </div>
        <a class="nav" href="/">← 契約書レビューAI</a>
    </div>

    <script>
        async function loadKnowledge() {
            const res = await fetch('/api/knowledge');
            const data = await res.json();
            document.getElementById('list-title').textContent = '登録済みナレッジ (' + data.count + '件)';
            const box = document.getElementById('items');
            if (!data.items || data.items.length === 0) {
                box.innerHTML = '<p style="color:#9ca3af;text-align:center">まだナレッジが登録されていません。<br>上記フォームから追加してください。</p>';
                return;
            }
            box.innerHTML = '';
            data.items.forEach(item => {
                const div = document.createElement('div');
                div.className = 'item';
                const del = document.createElement('button');
                del.className = 'delete';
                del.textContent = '削除';
                del.onclick = () => deleteKnowledge(item.id);
                div.appendChild(del);
                const h = document.createElement('h3');
                h.textContent = item.title;
                div.appendChild(h);
                const cat = document.createElement('span');
                cat.className = 'category';
                cat.textContent = item.category;
                div.appendChild(cat);
                const p = document.createElement('p');
                p.textContent = item.content;
                div.appendChild(p);
                const d = document.createElement('div');
                d.className = 'date';
                d.textContent = '追加日: ' + new Date(item.createdAt).toLocaleDateString();
                div.appendChild(d);
                box.appendChild(div);
            });
        }

        async function addKnowledge() {
            const title = document.getElementById('title').value.trim();
            const content = document.getElementById('content').value.trim();
            const category = document.getElementById('category').value.trim();
            if (!title || !content || !category) return;
            const res = await fetch('/api/knowledge', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify({ title, content, category })
            });
            if (res.ok) {
                document.getElementById('title').value = '';
                document.getElementById('content').value = '';
                document.getElementById('category').value = '';
                loadKnowledge();
            }
        }

        async function deleteKnowledge(id) {
            await fetch('/api/knowledge/' + id, { method: 'DELETE' });
            loadKnowledge();
        }

        loadKnowledge();
    </script>
</body>
</html>`
