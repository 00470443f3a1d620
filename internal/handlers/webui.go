package handlers

import "net/http"

// HandleIndex serves the operator page. It re-renders the list in
// place on refresh, so the browser keeps its own scroll position.
func (h *HandlerSet) HandleIndex(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(webUI))
}

const webUI = `<!DOCTYPE html>
<html lang="zh-Hant">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>printdesk 抓單後台</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:-apple-system,'Segoe UI',Roboto,sans-serif;background:#f5f5f5;color:#333;line-height:1.6}
.hdr{background:#1f2937;color:#fff;padding:12px 20px;display:flex;justify-content:space-between;align-items:center}
.hdr h1{font-size:17px;font-weight:600}
.content{max-width:960px;margin:0 auto;padding:16px}
.card{background:#fff;border-radius:8px;padding:16px;margin-bottom:12px;box-shadow:0 1px 3px rgba(0,0,0,.1)}
.row{display:flex;gap:8px;flex-wrap:wrap;align-items:center}
.btn{padding:7px 14px;border-radius:6px;border:none;cursor:pointer;font-size:14px;background:#2563eb;color:#fff}
.btn.secondary{background:#e5e7eb;color:#374151}
.pill{display:inline-block;padding:1px 9px;border-radius:20px;font-size:12px;background:#f3f4f6}
.pill.bad{background:#fee2e2;color:#991b1b}
.pill.warn{background:#fef9c3;color:#854d0e}
.pill.ok{background:#dcfce7;color:#166534}
.msg{border-bottom:1px solid #eee;padding:10px 0}
.msg .text{font-size:14px;margin-top:4px}
.msg .error{color:#b91c1c;font-size:13px}
.meta{font-size:13px;color:#555}
input,textarea{padding:7px 10px;border:1px solid #ddd;border-radius:6px;font-size:14px}
#status{font-size:13px;color:#555;margin:8px 0}
</style>
</head>
<body>
<div class="hdr"><h1>printdesk 抓單後台</h1>
<label style="font-size:13px"><input type="checkbox" id="autoRefresh" checked> 自動刷新</label></div>
<div class="content">
<div class="card">
  <div class="row">
    <button class="btn" id="btnRefresh">刷新</button>
    <button class="btn secondary" id="btnOnlyValid">僅有效：OFF</button>
    <button class="btn secondary" id="btnExportTxt">匯出買家明細TXT</button>
    <button class="btn secondary" id="btnExportCsv">匯出買家彙總CSV</button>
    <button class="btn secondary" id="btnPrev">上一頁</button>
    <button class="btn secondary" id="btnNext">下一頁</button>
    <span class="pill" id="pagerInfo"></span>
  </div>
  <div id="status">尚未載入</div>
</div>
<div class="card" id="stream"></div>
</div>
<script>
const $ = (id) => document.getElementById(id);
let PAGE = 1, ONLY_VALID = false, FILTER = null;

async function api(path, options = {}) {
  const res = await fetch(path, Object.assign({cache: "no-store"}, options));
  if (!res.ok) throw new Error("HTTP " + res.status + "：" + await res.text());
  const txt = await res.text();
  return txt ? JSON.parse(txt) : {};
}

function render(view) {
  FILTER = view.filter;
  ONLY_VALID = view.filter.only_valid;
  $("btnOnlyValid").textContent = ONLY_VALID ? "僅有效：ON" : "僅有效：OFF";
  const p = view.pager;
  PAGE = p.page;
  const pages = p.total ? Math.max(1, Math.ceil(p.total / p.page_size)) : 1;
  $("pagerInfo").textContent = "第 " + p.page + " / " + pages + " 頁（後端總計 " + p.total + " 筆）";
  const box = $("stream");
  box.innerHTML = "";
  if (!view.orders.length) { box.innerHTML = "<div class='meta'>沒有訂單</div>"; return; }
  for (const o of view.orders) {
    const cls = o.status === "failed" ? "bad" : (o.status === "queued" || o.status === "printing") ? "warn" : "ok";
    const div = document.createElement("div");
    div.className = "msg";
    div.innerHTML = "<div class='meta'><span class='pill'>ID #" + o.id + "</span> " +
      "<span class='pill'>日期 " + o.date + "</span> " + (o.buyer || "") +
      " <span class='pill " + cls + "'>" + o.status_label + "</span>" +
      " <span class='pill'>重印次數 " + o.reprint_count + "</span>" +
      " <span class='pill'>金額 " + o.amount + "</span></div>" +
      "<div class='text'></div>" + (o.error ? "<div class='error'></div>" : "");
    div.querySelector(".text").textContent = o.msg || "";
    if (o.error) div.querySelector(".error").textContent = "提示：" + o.error;
    box.appendChild(div);
  }
}

async function load(force) {
  try {
    $("status").textContent = "載入訂單中…";
    const view = force ? await api("/api/orders/refresh", {method: "POST"}) : await api("/api/orders");
    render(view);
    $("status").textContent = "資料已更新";
  } catch (e) {
    $("status").textContent = "抓單失敗：" + e.message;
  }
}

$("btnRefresh").addEventListener("click", () => load(true));
$("btnPrev").addEventListener("click", async () => {
  if (PAGE <= 1) return;
  render(await api("/api/orders/page", {method: "POST", body: JSON.stringify({page: PAGE - 1})}));
});
$("btnNext").addEventListener("click", async () => {
  render(await api("/api/orders/page", {method: "POST", body: JSON.stringify({page: PAGE + 1})}));
});
$("btnOnlyValid").addEventListener("click", async () => {
  const cfg = Object.assign({}, FILTER, {only_valid: !ONLY_VALID});
  render(await api("/api/settings/filter", {method: "PUT", body: JSON.stringify(cfg)}));
});
$("btnExportTxt").addEventListener("click", () => window.open("/api/export/text"));
$("btnExportCsv").addEventListener("click", () => window.open("/api/export/csv"));
$("autoRefresh").addEventListener("change", (e) => {
  api("/api/settings/autorefresh", {method: "POST", body: JSON.stringify({enabled: e.target.checked})});
});

api("/api/settings/autorefresh", {method: "POST", body: JSON.stringify({enabled: true})}).catch(() => {});
setInterval(() => load(false), 2000);
load(false);
</script>
</body>
</html>
`
