package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/trezcool/aulavirtual/apps/content"
	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/course"
	"github.com/trezcool/aulavirtual/core/enrollment"
	"github.com/trezcool/aulavirtual/core/evaluation"
	"github.com/trezcool/aulavirtual/core/message"
	"github.com/trezcool/aulavirtual/core/user"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	crumbStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	promptStyle = lipgloss.NewStyle().Bold(true)

	levelStyles = map[core.Level]lipgloss.Style{
		core.LevelInfo:    lipgloss.NewStyle(),
		core.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		core.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		core.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}

	statusStyles = map[course.Status]lipgloss.Style{
		course.StatusDraft:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		course.StatusPublished: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		course.StatusSuspended: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		course.StatusArchived:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true),
	}
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func row(w io.Writer, cols ...string) {
	_, _ = fmt.Fprintln(w, strings.Join(cols, "\t"))
}

func statusBadge(status course.Status) string {
	return statusStyles[status].Render("[" + string(status) + "]")
}

func visibilityBadge(visible bool) string {
	if visible {
		return "visible"
	}
	return faintStyle.Render("oculto")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderEmpty(w io.Writer, notices *core.Notices) {
	_, _ = fmt.Fprintln(w, faintStyle.Render(notices.T(core.NoticeEmpty)))
}

func renderUser(w io.Writer, usr user.User) {
	tw := newTable(w)
	row(tw, "ID", usr.ID)
	row(tw, "Email", usr.Email)
	row(tw, "Nombre", usr.FullName())
	row(tw, "Rol", string(usr.Role))
	row(tw, "Estado", string(usr.Status))
	_ = tw.Flush()
}

func renderUsers(w io.Writer, users []user.User) {
	tw := newTable(w)
	row(tw, "ID", "EMAIL", "NOMBRE", "ROL", "ESTADO", "ÚLTIMO ACCESO")
	for _, usr := range users {
		row(tw, usr.ID, usr.Email, usr.FullName(), string(usr.Role), string(usr.Status), orDash(usr.LastLogin))
	}
	_ = tw.Flush()
}

func renderCourses(w io.Writer, courses []course.Course) {
	tw := newTable(w)
	row(tw, "ID", "CÓDIGO", "NOMBRE", "ESTADO", "VISIBILIDAD")
	for _, crs := range courses {
		row(tw, crs.ID, crs.Shortname, crs.Fullname, statusBadge(crs.Status), visibilityBadge(crs.Visible))
	}
	_ = tw.Flush()
}

func renderCourse(w io.Writer, crs course.Course, stats *course.Stats) {
	_, _ = fmt.Fprintln(w, titleStyle.Render(crs.Fullname)+" "+statusBadge(crs.Status))
	tw := newTable(w)
	row(tw, "ID", crs.ID)
	row(tw, "Código", crs.Shortname)
	row(tw, "Formato", string(crs.Format))
	row(tw, "Visibilidad", visibilityBadge(crs.Visible))
	if len(crs.Tags) > 0 {
		row(tw, "Etiquetas", strings.Join(crs.Tags, ", "))
	}
	if stats != nil {
		row(tw, "Secciones", strconv.Itoa(stats.SectionCount))
		row(tw, "Elementos", strconv.Itoa(stats.ItemCount))
		row(tw, "Matriculaciones", strconv.Itoa(stats.EnrollmentCount))
		row(tw, "Estudiantes", strconv.Itoa(stats.StudentCount))
	}
	_ = tw.Flush()
}

// renderContent draws the content tree; collapsed sections hide their items.
func renderContent(w io.Writer, v *content.View) {
	crs, ok := v.Course()
	if !ok {
		return
	}
	_, _ = fmt.Fprintln(w, crumbStyle.Render(strings.Join(v.Breadcrumb(), " › ")))
	header := titleStyle.Render(crs.Fullname) + " " + statusBadge(crs.Status)
	switch {
	case v.EditMode():
		header += " " + activeStyle.Render("(edición)")
	case v.Preview():
		header += " " + faintStyle.Render("(vista de estudiante)")
	}
	_, _ = fmt.Fprintln(w, header)
	if stats := v.Stats(); stats != nil {
		_, _ = fmt.Fprintln(w, faintStyle.Render(fmt.Sprintf("%d secciones · %d elementos · %d estudiantes",
			stats.SectionCount, stats.ItemCount, stats.StudentCount)))
	}

	editMode := v.EditMode()
	for _, sec := range v.Tree() {
		line := fmt.Sprintf("%d. %s", sec.Position, sec.Title)
		if sec.Active {
			line = activeStyle.Render(line)
		}
		if sec.Hidden {
			line += " " + faintStyle.Render("[oculto]")
		}
		if editMode {
			line += " " + faintStyle.Render("#"+sec.ID)
		}
		_, _ = fmt.Fprintln(w, line)
		if !sec.Expanded {
			continue
		}
		for _, item := range sec.Items {
			line := fmt.Sprintf("   - %s (%s)", item.Title, item.Type)
			if item.Hidden {
				line += " " + faintStyle.Render("[oculto]")
			}
			if editMode {
				line += " " + faintStyle.Render("#"+item.ID)
			}
			_, _ = fmt.Fprintln(w, line)
		}
	}
}

func renderEnrollments(w io.Writer, enrollments []enrollment.Enrollment) {
	tw := newTable(w)
	row(tw, "ID", "USUARIO", "EMAIL", "ROL", "ESTADO", "PROGRESO")
	for _, enr := range enrollments {
		name, email := enr.UserID, "-"
		if enr.User != nil {
			name = strings.TrimSpace(enr.User.FirstName + " " + enr.User.LastName)
			email = enr.User.Email
		}
		row(tw, enr.ID, name, email, string(enr.Role), string(enr.Status), formatFloat(enr.ProgressPercentage)+"%")
	}
	_ = tw.Flush()
}

func renderMyEnrollments(w io.Writer, enrollments []enrollment.Enrollment) {
	tw := newTable(w)
	row(tw, "CURSO", "CÓDIGO", "ROL", "ESTADO", "PROGRESO")
	for _, enr := range enrollments {
		fullname, shortname := enr.CourseID, "-"
		if enr.Course != nil {
			fullname, shortname = enr.Course.Fullname, enr.Course.Shortname
		}
		row(tw, fullname, shortname, string(enr.Role), string(enr.Status), formatFloat(enr.ProgressPercentage)+"%")
	}
	_ = tw.Flush()
}

// renderGradebook draws one row per student and one column per gradable item.
func renderGradebook(w io.Writer, gb evaluation.Gradebook) {
	_, _ = fmt.Fprintln(w, titleStyle.Render(gb.Course.Fullname))
	tw := newTable(w)
	header := []string{"ESTUDIANTE"}
	for _, item := range gb.Items {
		header = append(header, item.Title)
	}
	row(tw, append(header, "MEDIA")...)
	for _, st := range gb.Students {
		cols := []string{strings.TrimSpace(st.User.FirstName + " " + st.User.LastName)}
		for _, item := range gb.Items {
			cell := "-"
			if g, ok := st.Grades[item.ID]; ok && g.Grade != nil {
				cell = formatFloat(*g.Grade)
			}
			cols = append(cols, cell)
		}
		avg := "-"
		if st.Average != nil {
			avg = formatFloat(*st.Average)
		}
		row(tw, append(cols, avg)...)
	}
	_ = tw.Flush()
}

func renderMyGrades(w io.Writer, grades []evaluation.MyGrade) {
	tw := newTable(w)
	row(tw, "ELEMENTO", "NOTA", "COMENTARIO", "FECHA")
	for _, g := range grades {
		title := g.ItemID
		if g.Item != nil {
			title = g.Item.Title
		}
		feedback := ""
		if g.Feedback != nil {
			feedback = *g.Feedback
		}
		row(tw, title, formatFloat(g.Grade), orDash(feedback), g.GradedAt)
	}
	_ = tw.Flush()
}

func renderQuestionCategories(w io.Writer, cats []evaluation.QuestionCategory) {
	tw := newTable(w)
	row(tw, "ID", "NOMBRE", "DESCRIPCIÓN")
	for _, cat := range cats {
		row(tw, cat.ID, cat.Name, orDash(cat.Description))
	}
	_ = tw.Flush()
}

func renderQuestions(w io.Writer, questions []evaluation.Question) {
	tw := newTable(w)
	row(tw, "ID", "TIPO", "PUNTOS", "PREGUNTA")
	for _, q := range questions {
		row(tw, q.ID, string(q.Type), formatFloat(q.Points), q.Text)
	}
	_ = tw.Flush()
}

func renderThreads(w io.Writer, threads []message.Thread) {
	tw := newTable(w)
	row(tw, "", "ID", "ASUNTO", "DE", "ÚLTIMO MENSAJE")
	for _, th := range threads {
		mark := " "
		if th.Unread {
			mark = activeStyle.Render("●")
		}
		row(tw, mark, th.ID, th.Subject, orDash(th.SenderName), th.LastMessageAt)
	}
	_ = tw.Flush()
}

func renderMessages(w io.Writer, msgs []message.Message) {
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt < msgs[j].CreatedAt })
	for _, msg := range msgs {
		_, _ = fmt.Fprintln(w, titleStyle.Render(orDash(msg.SenderName))+" "+faintStyle.Render(msg.CreatedAt))
		_, _ = fmt.Fprintln(w, "  "+msg.Content)
	}
}
